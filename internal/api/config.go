package api

import (
	"os"
	"time"
)

// Config holds the server configuration, loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	UpstreamBaseURL string
	PageTimeout     time.Duration
	ShutdownTimeout time.Duration
	LogFormat       string // "json" (default) or "text"
	LogLevel        string // "debug", "info" (default), "warn", "error"
}

// LoadConfig reads configuration from environment variables with sensible
// defaults.
func LoadConfig() Config {
	cfg := Config{
		ListenAddr:      ":8080",
		DBPath:          "./data/holocron.db",
		UpstreamBaseURL: "https://swapi.dev/api",
		PageTimeout:     15 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogFormat:       "json",
		LogLevel:        "info",
	}

	if v := os.Getenv("HOLOCRON_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("HOLOCRON_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HOLOCRON_UPSTREAM_URL"); v != "" {
		cfg.UpstreamBaseURL = v
	}
	if v := os.Getenv("HOLOCRON_PAGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PageTimeout = d
		}
	}
	if v := os.Getenv("HOLOCRON_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = d
		}
	}
	if v := os.Getenv("HOLOCRON_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("HOLOCRON_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}
