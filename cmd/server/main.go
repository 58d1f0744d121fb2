package main

import (
	"log"

	"github.com/jengzang/visits-backend-go/internal/api"
	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/database"
	"github.com/jengzang/visits-backend-go/internal/handler"
	"github.com/jengzang/visits-backend-go/internal/repository"
	"github.com/jengzang/visits-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	db := database.GetDB()

	// 应用数据库迁移
	migrator := database.NewMigrationManager(db, cfg.MigrationsPath)
	if err := migrator.RunMigrations(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// 组装依赖
	tripRepo := repository.NewTripRepository(db)
	pingRepo := repository.NewPingRepository(db, cfg.Recon.ChunkSize)
	visitRepo := repository.NewVisitRepository(db)

	reconcileService := service.NewReconcileService(tripRepo, pingRepo, visitRepo, cfg.Recon)
	reconcileHandler := handler.NewReconcileHandler(reconcileService)

	// 初始化路由
	router := api.SetupRouter(cfg, reconcileHandler)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
