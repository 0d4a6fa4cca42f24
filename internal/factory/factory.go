package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/tactics-progress/internal/catalogue"
	"github.com/mcoot/tactics-progress/internal/dependencies/clock"
	"github.com/mcoot/tactics-progress/internal/services/account"
	"github.com/mcoot/tactics-progress/internal/services/infinity"
	"github.com/mcoot/tactics-progress/internal/services/ladder"
	"github.com/mcoot/tactics-progress/internal/services/repetition"
	"github.com/mcoot/tactics-progress/internal/services/speedrun"
	"github.com/mcoot/tactics-progress/internal/storage"
	"github.com/mcoot/tactics-progress/internal/storage/memory"
	"github.com/mcoot/tactics-progress/internal/storage/postgres"
	redisstorage "github.com/mcoot/tactics-progress/internal/storage/redis"
	"github.com/mcoot/tactics-progress/internal/storage/sqlite"
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
	Clock  clock.Clock
	Logger *slog.Logger

	// Services
	AccountService    *account.Service
	LadderService     *ladder.Service
	InfinityService   *infinity.Service
	SpeedrunService   *speedrun.Service
	RepetitionService *repetition.Service
}

// Config holds configuration for the application factory
type Config struct {
	// CataloguePath is the YAML catalogue to seed on startup (optional)
	// If empty, the bundled catalogue is used
	CataloguePath string
	// SkipSeed leaves the catalogue in storage untouched
	SkipSeed bool
	// AccountConfig holds configuration for the account service (optional)
	// If zero value, defaults to account.DefaultConfig()
	AccountConfig account.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis", "sqlite" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// DatabaseURL is the PostgreSQL connection URL (required if StorageType is "postgres")
	DatabaseURL string
}

// New creates a new application with all dependencies wired and the catalogue seeded
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.SkipSeed {
		if err := seedCatalogue(ctx, store, cfg.CataloguePath); err != nil {
			_ = closeStorage(store)
			return nil, err
		}
		logger.Info("catalogue seeded", "path", cfg.CataloguePath)
	}

	return newWithDependencies(store, clock.New(), cfg.AccountConfig, logger), nil
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.New(ctx, cfg.SQLitePath)
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		return postgres.New(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis', 'sqlite' or 'postgres'", storageType)
	}
}

func seedCatalogue(ctx context.Context, store storage.Storage, path string) error {
	var (
		c   *catalogue.Catalogue
		err error
	)
	if path == "" {
		c, err = catalogue.Default()
	} else {
		c, err = catalogue.Load(path)
	}
	if err != nil {
		return err
	}
	return c.Seed(ctx, store)
}

func closeStorage(store storage.Storage) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Close releases the storage backend's connections
func (a *App) Close() error {
	return closeStorage(a.Storage)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, accountCfg account.Config, logger *slog.Logger) *App {
	ladderService := ladder.New(store, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Logger:            logger,
		AccountService:    account.New(store, clk, logger, accountCfg),
		LadderService:     ladderService,
		InfinityService:   infinity.New(store, ladderService, clk, logger),
		SpeedrunService:   speedrun.New(store, clk, logger),
		RepetitionService: repetition.New(store, clk, logger),
	}
}
