package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mcoot/tactics-progress/internal/api"
	"github.com/mcoot/tactics-progress/internal/factory"
	redisstorage "github.com/mcoot/tactics-progress/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	level := slog.LevelInfo
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = slog.LevelInfo
		}
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Build factory config from environment
	cfg := factory.Config{
		CataloguePath: os.Getenv("CATALOGUE_PATH"),
		SkipSeed:      os.Getenv("SKIP_SEED") == "true",
		Logger:        logger,
		StorageType:   os.Getenv("STORAGE_TYPE"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if url := os.Getenv("REDIS_URL"); url != "" {
			redisCfg.URL = url
		}
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		AccountService:    app.AccountService,
		InfinityService:   app.InfinityService,
		SpeedrunService:   app.SpeedrunService,
		RepetitionService: app.RepetitionService,
	})

	serverConfig := api.DefaultServerConfig()
	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		serverConfig.Port = port
	}

	server := api.NewServer(router, serverConfig, logger)
	logger.Info("server configured",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)

	return server.Run(ctx)
}
