package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vnfurniture/internal/cache"
	"vnfurniture/internal/config"
	"vnfurniture/internal/database"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/storage"
	"vnfurniture/internal/store"
	"vnfurniture/internal/store/memory"
	"vnfurniture/internal/store/postgres"
	"vnfurniture/internal/store/scylla"
)

// openStore connects the table driver named by STORE_DRIVER.
func openStore(cfg *config.Config) (*store.Backend, error) {
	switch cfg.StoreDriver {
	case "scylla":
		sm, err := database.NewScyllaManager(database.NewScyllaConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("scylla: %w", err)
		}
		return scylla.New(sm, sm.Close), nil
	case "postgres":
		db, err := database.ConnectPostgres(cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return postgres.New(db), nil
	case "memory":
		logger.Log.Warn("⚠️ using the in-memory store, data is lost on restart")
		return memory.New().Backend(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// openBucket connects the product image bucket. The in-memory bucket is
// returned separately so the router can serve it.
func openBucket(ctx context.Context, cfg *config.Config) (storage.Bucket, *storage.Memory, error) {
	switch cfg.StorageDriver {
	case "minio":
		client, err := database.ConnectMinIO(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("minio: %w", err)
		}
		return storage.NewMinIO(client, cfg.MinioBucket, cfg.MinioPublicURL), nil, nil
	case "memory":
		mem := storage.NewMemory(cfg.MinioBucket, strings.TrimRight(cfg.BaseURL, "/")+"/objects")
		return mem, mem, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// openCache prefers Redis and falls back to a process-local cache.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func()) {
	if cfg.RedisHost == "" {
		logger.Log.Warn("⚠️ REDIS_HOST not set, using an in-process cache")
		return cache.NewMemory(), func() {}
	}
	client, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Log.Warn("⚠️ Redis unavailable, using an in-process cache", zap.Error(err))
		return cache.NewMemory(), func() {}
	}
	r := cache.NewRedis(client)
	return r, func() { _ = r.Close() }
}
