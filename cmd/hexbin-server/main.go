package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohammed-shakir/hexbin-choropleth/internal/app"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/cache"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/cache/lrustore"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/cache/redisstore"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/config"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/observability"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/core/server"
	"github.com/mohammed-shakir/hexbin-choropleth/internal/logger"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "hexbin-server",
	}, os.Stdout)

	observability.ExposeBuildInfo(Version)
	zl.Info().
		Str("addr", cfg.Addr).
		Str("version", Version).
		Str("cache_driver", cfg.CacheDriver).
		Int("gridsize_default", cfg.DefaultGridSize).
		Msg("starting hexbin server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildCache(ctx, cfg)
	if err != nil {
		zl.Error().Err(err).Msg("failed to initialize cache")
		return 1
	}

	handler := app.New(&zl, cfg, store)
	if err := server.Run(ctx, cfg, &zl, handler); err != nil {
		zl.Error().Err(err).Msg("server exited")
		return 1
	}
	return 0
}

func buildCache(ctx context.Context, cfg config.Config) (cache.Interface, error) {
	switch cfg.CacheDriver {
	case "", "none":
		return nil, nil
	case "redis":
		return redisstore.New(ctx, cfg.RedisAddr, cfg.CacheTTL)
	default:
		return lrustore.New(cfg.CacheLRUSize)
	}
}
