package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// HTTP server configuration
	ListenAddr string

	// Admin panel configuration
	AdminPassword   string
	AdminJWTSecret  string
	AdminSessionTTL time.Duration

	// Lottery configuration
	MaxPID          int           // highest PID in the allocation ring, inclusive
	DefaultRedCount int           // winning tiles among 3, 0-3
	InitialState    string        // waiting/open/closed
	RoundTTL        time.Duration // lifetime of a dealt, unresolved round
	SessionMaxAge   time.Duration // pid cookie max-age

	// Activity window scheduler
	WindowSweepInterval time.Duration

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Optional .env for local runs; missing file is fine
	_ = godotenv.Load()

	config := &Config{
		ListenAddr:     envOr("LISTEN_ADDR", ":8080"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),

		// Lottery settings with defaults
		AdminSessionTTL:     2 * time.Hour,
		MaxPID:              1000,
		DefaultRedCount:     1,
		InitialState:        envOr("ACTIVITY_STATE", "waiting"),
		RoundTTL:            10 * time.Minute,
		SessionMaxAge:       7 * 24 * time.Hour,
		WindowSweepInterval: time.Second,

		LogLevel:    envOr("LOG_LEVEL", "info"),
		Environment: envOr("ENVIRONMENT", "development"),
	}

	// Override defaults if environment variables are set
	if v := os.Getenv("MAX_PID"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			config.MaxPID = parsed
		}
	}
	if v := os.Getenv("RED_COUNT_MODE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed <= 3 {
			config.DefaultRedCount = parsed
		}
	}
	if v := os.Getenv("ADMIN_SESSION_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.AdminSessionTTL = parsed
		}
	}
	if v := os.Getenv("ROUND_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.RoundTTL = parsed
		}
	}
	if v := os.Getenv("WINDOW_SWEEP_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.WindowSweepInterval = parsed
		}
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.AdminPassword == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD is required")
		}
		if config.AdminJWTSecret == "" {
			return nil, fmt.Errorf("ADMIN_JWT_SECRET is required")
		}
	}

	return config, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
