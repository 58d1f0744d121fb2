package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jengzang/visits-backend-go/internal/config"
	"github.com/jengzang/visits-backend-go/internal/handler"
	"github.com/jengzang/visits-backend-go/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, reconcileHandler *handler.ReconcileHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 中间件
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	r.Use(middleware.RateLimit(300, time.Minute))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Visits Backend API is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		trips := api.Group("/trips")
		{
			trips.GET("/:id/visits", reconcileHandler.ListVisits)
			trips.POST("/:id/visits/preview", reconcileHandler.Preview)
			trips.POST("/:id/visits/apply", reconcileHandler.Apply)
			trips.DELETE("/:id/visits", reconcileHandler.ClearVisits)
		}
	}

	return r
}
