package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr  string
	CORSOrigins string // Comma-separated allowed origins, "*" allows any
	FrontendDir string // Static UI directory, served at "/" when present

	// Rate limiting
	RedisURL     string // Shared limiter storage; empty keeps counters in memory
	RateLimitMax int    // Requests per minute per IP

	// Ollama
	OllamaBaseURL    string
	OllamaModel      string
	OllamaMaxRetries int
	OllamaTimeout    time.Duration

	// Files
	UploadDir     string
	OutputDir     string
	MaxFileSizeMB int

	// Logging
	LogLevel string

	// Classification defaults overlay (YAML)
	SettingsFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":5000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		FrontendDir: getEnv("FRONTEND_DIR", "frontend"),

		RedisURL:     getEnv("REDIS_URL", ""),
		RateLimitMax: getEnvInt("RATE_LIMIT_MAX", 300),

		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3.1:8b"),
		OllamaMaxRetries: getEnvInt("OLLAMA_MAX_RETRIES", 3),
		OllamaTimeout:    getEnvDuration("OLLAMA_TIMEOUT", 60*time.Second),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		OutputDir:     getEnv("OUTPUT_DIR", "outputs"),
		MaxFileSizeMB: getEnvInt("MAX_FILE_SIZE_MB", 50),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		SettingsFile: getEnv("SETTINGS_FILE", "settings.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// BodyLimit returns the maximum request body size in bytes.
func (c *Config) BodyLimit() int {
	if c.MaxFileSizeMB <= 0 {
		return 50 * 1024 * 1024
	}
	return c.MaxFileSizeMB * 1024 * 1024
}
