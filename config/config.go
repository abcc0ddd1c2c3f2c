package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	OpenAI   OpenAIConfig
	Firebase FirebaseConfig
	Store    StoreConfig
	Redis    RedisConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Upstream calls per second allowed across the process.
	RequestsPerSec float64
	Burst          int
}

type FirebaseConfig struct {
	CredentialsPath string
}

type StoreConfig struct {
	FilePath      string
	RetentionDays int
}

type RedisConfig struct {
	Addr     string
	SolveQPS int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o"),
			RequestsPerSec: float64(getEnvAsInt("OPENAI_RPS", 2)),
			Burst:          getEnvAsInt("OPENAI_BURST", 4),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Store: StoreConfig{
			FilePath:      getEnv("STORE_FILE", filepath.Join(os.TempDir(), "solve_history.json")),
			RetentionDays: getEnvAsInt("BOARD_RETENTION_DAYS", 0),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			SolveQPS: getEnvAsInt("SOLVE_RATE_QPS", 5),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks startup-time requirements. OPENAI_API_KEY is deliberately
// not required here: its absence is surfaced per-request by the solve service.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Store.FilePath == "" {
		return fmt.Errorf("STORE_FILE is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
