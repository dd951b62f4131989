package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Raster  RasterConfig
	LLM     LLMConfig
	History HistoryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
	// AccessToken gates the extraction endpoints when non-empty.
	// Checked per request; no process-wide session state.
	AccessToken    string
	MaxUploadBytes int64
}

// RasterConfig holds PDF rasterization configuration
type RasterConfig struct {
	DPI float64
}

// LLMConfig holds extraction-model configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// HistoryConfig holds the extraction-history store configuration
type HistoryConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			AccessToken:    getEnv("APP_ACCESS_TOKEN", ""),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 32<<20),
		},
		Raster: RasterConfig{
			DPI: getEnvAsFloat64("RASTER_DPI", 300),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		History: HistoryConfig{
			Path: getEnv("HISTORY_DB_PATH", "./pedidos.db"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Raster.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "RASTER_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
