package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/passcode-go/internal/dependencies/clock"
	"github.com/mcoot/passcode-go/internal/dependencies/ids"
	"github.com/mcoot/passcode-go/internal/events"
	"github.com/mcoot/passcode-go/internal/metrics"
	"github.com/mcoot/passcode-go/internal/services/game"
	"github.com/mcoot/passcode-go/internal/services/scoring"
	"github.com/mcoot/passcode-go/internal/storage"
	"github.com/mcoot/passcode-go/internal/storage/memory"
	"github.com/mcoot/passcode-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/passcode-go/internal/storage/redis"
	"github.com/mcoot/passcode-go/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock
	IDs   ids.Generator

	// Services
	ScoringService *scoring.Service
	GameController *game.Controller

	// Live events and metrics; Metrics is nil when disabled
	HubManager *events.HubManager
	Publisher  *events.Publisher
	Metrics    *metrics.Recorder

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// DatabaseURL is the Postgres connection string (required if StorageType is "postgres")
	DatabaseURL string
	// MetricsEnabled adds a Prometheus recorder as a game listener
	MetricsEnabled bool
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", slog.String("type", storageTypeOrDefault(cfg.StorageType)))

	app := newWithDependencies(store, clock.New(), ids.New(), cfg.MetricsEnabled, logger)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

// openStorage creates the configured backend. The closer is nil for memory.
func openStorage(ctx context.Context, cfg Config) (storage.Storage, io.Closer, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil, nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, nil, errors.New("RedisConfig required when StorageType is redis")
		}
		s, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis', 'sqlite' or 'postgres'", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, idGen ids.Generator, metricsEnabled bool, logger *slog.Logger) *App {
	hubManager := events.NewHubManager(logger)
	publisher := events.NewPublisher(hubManager, logger)

	listeners := game.Listeners{publisher}
	var recorder *metrics.Recorder
	if metricsEnabled {
		recorder = metrics.New(hubManager.ClientCount)
		listeners = append(listeners, recorder)
	}

	scoringService := scoring.New()
	gameController := game.NewController(store, scoringService, clk, idGen, listeners, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		IDs:            idGen,
		ScoringService: scoringService,
		GameController: gameController,
		HubManager:     hubManager,
		Publisher:      publisher,
		Metrics:        recorder,
	}
}

// Close disconnects event watchers and releases storage connections
func (a *App) Close() error {
	a.HubManager.Close()
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
