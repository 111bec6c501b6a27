package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  string
	DBUrl string
	// Redis Configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Ranking Configuration
	HomeMarketCountry string
	CustomSortMaxRows int
	StorageRetries    int
	// Cache Configuration
	CacheTTLVolatileSeconds int // trending, urgency
	CacheTTLStaticSeconds   int // everything else
	// Empty string means TTL-only invalidation (the default). When set, a
	// pub/sub subscriber drops cached pages on data-change signals.
	CacheInvalidationChannel string
	// Analytics Configuration
	AnalyticsStream       string
	AnalyticsFlushSize    int
	AnalyticsFlushSeconds int
}

func LoadConfig() (*Config, error) {
	// Only effective locally; ignored in production when the file is absent
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBUrl:         getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		// Ranking defaults
		HomeMarketCountry: getEnv("HOME_MARKET_COUNTRY", "India"),
		CustomSortMaxRows: getEnvInt("CUSTOM_SORT_MAX_ROWS", 100),
		StorageRetries:    getEnvInt("STORAGE_RETRY_ATTEMPTS", 3),
		// Cache defaults per strategy volatility
		CacheTTLVolatileSeconds:  getEnvInt("CACHE_TTL_VOLATILE_SECONDS", 300),
		CacheTTLStaticSeconds:    getEnvInt("CACHE_TTL_STATIC_SECONDS", 1800),
		CacheInvalidationChannel: getEnv("CACHE_INVALIDATION_CHANNEL", ""),
		// Analytics batching
		AnalyticsStream:       getEnv("ANALYTICS_STREAM", "jobsearch:events"),
		AnalyticsFlushSize:    getEnvInt("ANALYTICS_FLUSH_SIZE", 50),
		AnalyticsFlushSeconds: getEnvInt("ANALYTICS_FLUSH_SECONDS", 10),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
