package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig configures the workflow API (cmd/server).
type ServerConfig struct {
	Addr           string
	BackendBaseURL string
	RedisAddr      string // empty runs the notification bus in process
	RequestTimeout time.Duration
	HistoryLimit   int
}

// BackendConfig configures the scrape/generate/publish backend (cmd/backend).
type BackendConfig struct {
	Addr          string
	PostgresDSN   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	TextModel     string
	ImageModel    string
	ScrapeTimeout time.Duration
}

// LoadEnvFile reads a .env file into the process environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func LoadServer() (*ServerConfig, error) {
	timeout, err := getDuration("REQUEST_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	history, err := getInt("NOTIFICATION_HISTORY", 50)
	if err != nil {
		return nil, err
	}
	cfg := &ServerConfig{
		Addr:           GetEnv("SERVER_ADDR", ":8080"),
		BackendBaseURL: GetEnv("BACKEND_BASE_URL", "http://127.0.0.1:8000"),
		RedisAddr:      GetEnv("REDIS_ADDR", ""),
		RequestTimeout: timeout,
		HistoryLimit:   history,
	}
	if cfg.BackendBaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL must be set")
	}
	return cfg, nil
}

func LoadBackend() (*BackendConfig, error) {
	timeout, err := getDuration("SCRAPE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg := &BackendConfig{
		Addr:          GetEnv("BACKEND_ADDR", ":8000"),
		PostgresDSN:   GetEnv("POSTGRES_DSN", ""),
		OpenAIAPIKey:  GetEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: GetEnv("OPENAI_BASE_URL", ""),
		TextModel:     GetEnv("OPENAI_TEXT_MODEL", "gpt-3.5-turbo"),
		ImageModel:    GetEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		ScrapeTimeout: timeout,
	}
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN environment variable must be set")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable must be set")
	}
	return cfg, nil
}
