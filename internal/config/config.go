package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// AppName is reported by the root endpoint and as the trace service name
	AppName = "Passcode Guessing Game"

	// Version of the API
	Version = "1.0.0"
)

// Config is the server configuration, read from the environment
type Config struct {
	Host string `env:"PASSCODE_HOST"`
	Port int    `env:"PASSCODE_PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// StorageType is one of memory, redis, sqlite or postgres
	StorageType  string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL"`
	RedisGameTTL time.Duration `env:"REDIS_GAME_TTL" envDefault:"24h"`
	SQLitePath   string        `env:"SQLITE_PATH" envDefault:"passcode.db"`
	DatabaseURL  string        `env:"DATABASE_URL"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	OTelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load reads the given .env files, if present, then parses the environment.
// Variables already set in the environment win over .env values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	switch c.StorageType {
	case "memory", "sqlite":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis, sqlite or postgres", c.StorageType)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PASSCODE_PORT %d", c.Port)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
