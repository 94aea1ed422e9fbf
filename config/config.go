package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	MongoURI string
	MongoDB  string

	ReviewsSampleSize  int
	ScoringConcurrency int
	MaxRetries         int

	OutputDir  string
	SQLitePath string
	XLSXPath   string
	LogDir     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	outputDir := getEnv("OUTPUT_DIR", "./output")

	return &Config{
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDB:  getEnv("MONGO_DB", "bi_mx"),

		ReviewsSampleSize:  getEnvInt("REVIEWS_SAMPLE_SIZE", 15000),
		ScoringConcurrency: getEnvInt("SCORING_CONCURRENCY", 1),
		MaxRetries:         getEnvInt("MAX_RETRIES", 5),

		OutputDir:  outputDir,
		SQLitePath: getEnv("SQLITE_PATH", filepath.Join(outputDir, "bi_mx.db")),
		XLSXPath:   getEnv("XLSX_PATH", filepath.Join(outputDir, "datos_limpios.xlsx")),
		LogDir:     getEnv("LOG_DIR", "./logs"),
	}
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
