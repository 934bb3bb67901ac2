package repository

import (
	"context"
	"fmt"
	"time"

	"market-khabri/internal/khabri/config"
	"market-khabri/pkg/logger"
	"market-khabri/pkg/postgres"
	"market-khabri/pkg/redis"
)

// AnalysisStore defines the interface for the append-only key/value store that
// holds analysis records and calendar snapshots. Keys use forward slashes.
type AnalysisStore interface {
	Write(ctx context.Context, key string, data []byte) error
	// Read returns entity.ErrNotFound (wrapped) for unknown keys.
	Read(ctx context.Context, key string) ([]byte, error)
	// List returns every key starting with prefix, in ascending lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
	ModTime(ctx context.Context, key string) (time.Time, error)
}

// NewAnalysisStoreFromConfig opens the store selected by cfg.Storage.Driver.
// The returned closer releases any connection the store holds.
func NewAnalysisStoreFromConfig(cfg *config.Config, log *logger.Logger) (AnalysisStore, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case "", "file":
		return NewFileAnalysisStore(cfg.Storage.DataDir, log), noop, nil

	case "redis":
		client, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize redis: %w", err)
		}
		return NewRedisAnalysisStore(client.Client, log), func() { _ = client.Close() }, nil

	case "postgres":
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize database: %w", err)
		}
		closer := func() {
			if sqlDB, err := db.DB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return NewPostgresAnalysisStore(db.DB, log), closer, nil

	default:
		return nil, noop, fmt.Errorf("invalid storage driver %q", cfg.Storage.Driver)
	}
}
