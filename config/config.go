package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	StoreBackend     string

	HTTPAddr        string
	SearchTimeoutMs int

	SeedCSVPath   string
	SeedBatchSize int

	MaxConcurrency   int
	RateLimitMs      int
	MaxRetries       int
	PreviewMaxImages int
	ChromeBin        string

	LogLevel  string
	LogPretty bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "livva"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "livva123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),

		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		SearchTimeoutMs: getEnvInt("SEARCH_TIMEOUT_MS", 10000),

		SeedCSVPath:   getEnv("SEED_CSV_PATH", "./data/apartments.com-room-data.csv"),
		SeedBatchSize: getEnvInt("SEED_BATCH_SIZE", 50),

		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 1500),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		PreviewMaxImages: getEnvInt("PREVIEW_MAX_IMAGES", 4),
		ChromeBin:        getEnv("CHROME_BIN", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", true),
	}
}

// DSN returns the PostgreSQL connection string. DATABASE_URL wins when set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
