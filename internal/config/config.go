package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Blob storage (S3-compatible)
	StorageKey       string
	StorageSecret    string
	StorageRegion    string
	StorageBucket    string
	StorageEndpoint  string
	StoragePublicURL string

	// Server
	Port        string
	CORSOrigins string

	// Seed demo users/categories/recipes on boot
	SeedDemoData bool
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tastebook_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		StorageKey:       getEnv("STORAGE_KEY", ""),
		StorageSecret:    getEnv("STORAGE_SECRET", ""),
		StorageRegion:    getEnv("STORAGE_REGION", "nyc3"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "tastebook"),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "/storage"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		SeedDemoData: getEnv("SEED_DEMO_DATA", "false") == "true",
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}
