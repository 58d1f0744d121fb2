package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	MigrationsPath string

	Recon ReconSettings
}

// ReconSettings holds the tunables of the visit reconciliation engine.
// Tier radii are assumed monotonically non-decreasing
// (Tier1Radius <= Tier2Radius <= Tier3Radius <= MaxRadius2); loading does not
// validate this, it only substitutes defaults for unset values.
type ReconSettings struct {
	MinRadius float64 // meters; inside this distance no confidence penalty applies
	MaxRadius float64 // meters; strict-candidate search radius
	MinHits   int     // minimum pings per (place, day) for a strict candidate

	NotesMaxChars int // snapshot cap for place notes

	// Suggestion tiers
	Tier1Radius float64
	Tier1Hits   int
	Tier2Radius float64
	Tier2Hits   int
	Tier3Radius float64
	Tier3Hits   int
	MaxRadius2  float64 // suggestion search ceiling
	MaxHits     int     // total-hit threshold at the ceiling

	// Execution strategy
	BatchThreshold int           // place count at which the batched query kicks in
	ChunkSize      int           // max places carried by one batched query
	BatchTimeout   time.Duration // generous timeout for batched queries
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/visits/visits.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}

	return &Config{
		Port:           port,
		DBPath:         dbPath,
		JWTSecret:      jwtSecret,
		MigrationsPath: migrationsPath,
		Recon:          loadReconSettings(),
	}
}

func loadReconSettings() ReconSettings {
	return ReconSettings{
		MinRadius:     getEnvFloat("RECON_MIN_RADIUS_M", 35),
		MaxRadius:     getEnvFloat("RECON_MAX_RADIUS_M", 150),
		MinHits:       getEnvInt("RECON_MIN_HITS", 2),
		NotesMaxChars: getEnvInt("RECON_NOTES_MAX_CHARS", 280),

		Tier1Radius: getEnvFloat("RECON_TIER1_RADIUS_M", 75),
		Tier1Hits:   getEnvInt("RECON_TIER1_HITS", 3),
		Tier2Radius: getEnvFloat("RECON_TIER2_RADIUS_M", 200),
		Tier2Hits:   getEnvInt("RECON_TIER2_HITS", 5),
		Tier3Radius: getEnvFloat("RECON_TIER3_RADIUS_M", 350),
		Tier3Hits:   getEnvInt("RECON_TIER3_HITS", 8),
		MaxRadius2:  getEnvFloat("RECON_SUGGEST_MAX_RADIUS_M", 500),
		MaxHits:     getEnvInt("RECON_SUGGEST_MAX_HITS", 12),

		BatchThreshold: getEnvInt("RECON_BATCH_THRESHOLD", 10),
		ChunkSize:      getEnvInt("RECON_CHUNK_SIZE", 10000),
		BatchTimeout:   time.Duration(getEnvInt("RECON_BATCH_TIMEOUT_S", 120)) * time.Second,
	}
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
