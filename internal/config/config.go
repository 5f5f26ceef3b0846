// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Reference-term categories — the four lookup tables populated lazily from
// catalog data during enrichment
// --------------------------------------------------------------------------

// NormalizeMode controls how raw catalog terms are canonicalized before
// hitting the unique constraint.
type NormalizeMode int

const (
	NormalizeUpper NormalizeMode = iota // muscles, equipment, body parts
	NormalizeLower                      // keywords
)

type CategoryConfig struct {
	ID    string
	Table string
	Mode  NormalizeMode
}

var CategoryRegistry = map[string]CategoryConfig{
	"muscles":   {ID: "muscles", Table: MusclesTable, Mode: NormalizeUpper},
	"equipment": {ID: "equipment", Table: EquipmentTable, Mode: NormalizeUpper},
	"bodyparts": {ID: "bodyparts", Table: BodyPartsTable, Mode: NormalizeUpper},
	"keywords":  {ID: "keywords", Table: KeywordsTable, Mode: NormalizeLower},
}

// Categories lists category IDs in the order seeding and enrichment report
// them.
var Categories = []string{"muscles", "equipment", "bodyparts", "keywords"}

// --------------------------------------------------------------------------
// Table names — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	MusclesTable   = "muscles"
	EquipmentTable = "equipment"
	BodyPartsTable = "body_parts"
	KeywordsTable  = "keywords"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// ExerciseDB catalog API
	ExerciseDBAPIKey  string
	ExerciseDBAPIHost string
	ExerciseDBBaseURL string
	CatalogTimeout    time.Duration
	CatalogRPM        int // requests per minute against the catalog

	// Gemini generative API
	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration
	GenerationTokens  int
	GenerationTemp    float64

	// Cache
	CacheEnabled bool

	// Reference refresh (0 disables)
	ReferenceRefreshInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("NEON_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or NEON_DATABASE_URL must be set")
	}

	host := envOr("EXERCISEDB_API_HOST", "exercisedb-api1.p.rapidapi.com")

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		ExerciseDBAPIKey:  envOr("EXERCISEDB_API_KEY", ""),
		ExerciseDBAPIHost: host,
		ExerciseDBBaseURL: envOr("EXERCISEDB_BASE_URL", "https://"+host+"/api/v1"),
		CatalogTimeout:    time.Duration(envInt("EXERCISEDB_TIMEOUT_SECONDS", 15)) * time.Second,
		CatalogRPM:        envInt("EXERCISEDB_REQUESTS_PER_MINUTE", 120),

		GeminiAPIKey:      envOr("GEMINI_API_KEY", ""),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GenerationTimeout: time.Duration(envInt("GEMINI_TIMEOUT_SECONDS", 180)) * time.Second,
		GenerationTokens:  envInt("GEMINI_MAX_OUTPUT_TOKENS", 8192),
		GenerationTemp:    envFloat("GEMINI_TEMPERATURE", 0.7),

		CacheEnabled: envBool("CACHE_ENABLED", true),

		ReferenceRefreshInterval: time.Duration(envInt("REFERENCE_REFRESH_MINUTES", 0)) * time.Minute,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
