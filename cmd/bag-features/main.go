package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/3dgi/bag-features/internal/cache"
	"github.com/3dgi/bag-features/internal/config"
	"github.com/3dgi/bag-features/internal/health"
	"github.com/3dgi/bag-features/internal/httpapi"
	"github.com/3dgi/bag-features/internal/index"
	"github.com/3dgi/bag-features/internal/logger"
	"github.com/3dgi/bag-features/internal/model"
	"github.com/3dgi/bag-features/internal/observability"
	"github.com/3dgi/bag-features/internal/params"
	"github.com/3dgi/bag-features/internal/store"
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
		Component: "bag-features",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting feature server",
		"addr", cfg.Addr,
		"version", Version,
		"spatial_backend", cfg.SpatialBackend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		spatial  index.SpatialStore
		tiles    httpapi.TileResolver
		features store.FeatureStore
		pingers  = map[string]health.Pinger{}
	)

	switch cfg.SpatialBackend {
	case "memory":
		if cfg.CatalogPath == "" {
			appLog.Error("memory backend needs CATALOG_PATH")
			return 1
		}
		entries, err := index.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			appLog.Error("catalog load failed", "err", err)
			return 1
		}
		mem, err := index.NewMemStore(entries)
		if err != nil {
			appLog.Error("spatial index build failed", "err", err)
			return 1
		}
		appLog.Info("catalog indexed", "features", len(entries))
		spatial = mem
		tiles = mem

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			appLog.Error("database connect failed", "err", err)
			return 1
		}
		defer pool.Close()
		pingers["postgres"] = pool
		features = store.NewPGStore(pool, appLog)

	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			appLog.Error("database connect failed", "err", err)
			return 1
		}
		defer pool.Close()
		pingers["postgres"] = pool
		spatial = index.NewPGStore(pool, appLog)
		features = store.NewPGStore(pool, appLog)
	}

	switch cfg.DocCache.Backend {
	case "none":
	case "redis":
		rc, err := store.NewRedisCache(ctx, cfg.RedisAddr, cfg.DocCache.TTL, appLog)
		if err != nil {
			appLog.Error("redis connect failed", "err", err)
			return 1
		}
		defer rc.Close()
		features = store.NewCached(features, rc)
	default:
		lc, err := store.NewLRUCache(cfg.DocCache.Size)
		if err != nil {
			appLog.Error("doc cache setup failed", "err", err)
			return 1
		}
		features = store.NewCached(features, lc)
	}

	pcfg := params.Config{
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
	}
	if cfg.UseDefaultExtent {
		pcfg.DefaultExtent = &model.BBox{
			MinX: 10000, MinY: 306250, MaxX: 287760, MaxY: 623690,
		}
	}

	boxes := cache.New(spatial, cfg.QueryTimeout, appLog)
	api := httpapi.New(appLog, pcfg, boxes, spatial, features, tiles, pingers)

	if err := httpapi.Run(ctx, cfg.Addr, api.Router(), cfg.ShutdownTimeout, appLog); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
