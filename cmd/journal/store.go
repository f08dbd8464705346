package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tradelog/internal/blob"
	"tradelog/internal/config"
	"tradelog/internal/db"
	"tradelog/internal/kv"
)

type backend struct {
	store kv.Store
	ping  func(ctx context.Context) error
	close func() error
}

func openStore(cfg config.Config, logger *zap.Logger) (backend, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return backend{store: kv.NewMemoryStore(), close: func() error { return nil }}, nil
	case "redis":
		rs := kv.NewRedisStore(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return backend{}, fmt.Errorf("redis ping: %w", err)
		}
		return backend{store: rs, ping: rs.Ping, close: rs.Close}, nil
	case "postgres":
		dbConn, err := db.Open(context.Background(), cfg.DB, logger)
		if err != nil {
			return backend{}, fmt.Errorf("db open: %w", err)
		}
		if err := dbConn.SetTimezone(cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := dbConn.AutoMigrate(); err != nil {
			_ = dbConn.Close()
			return backend{}, fmt.Errorf("auto-migrate: %w", err)
		}
		return backend{store: kv.NewGormStore(dbConn.Gorm), ping: dbConn.Ping, close: dbConn.Close}, nil
	default:
		return backend{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func openBlobs(cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "memory":
		return blob.NewMemoryStore(), nil
	case "", "file":
		return blob.NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
