package builder

import (
	"context"
	"fmt"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/knowledge"
	"github.com/futig/ba-assistant/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// setupDatabase creates a new database connection pool
func setupDatabase(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
		zap.Duration("health_check_period", poolConfig.HealthCheckPeriod),
	)

	return pool, nil
}

// setupStore opens the knowledge base backend selected by STORE_DRIVER.
// Returned closers release it on shutdown.
func setupStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (knowledge.KVStore, []func(), error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		kv, err := repository.NewKVSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("knowledge bases stored in sqlite", zap.String("path", cfg.SQLitePath))
		return kv, []func(){func() { _ = kv.Close() }}, nil

	case config.StoreDriverPostgres:
		db, err := setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")
		return repository.NewKVPostgres(db), []func(){db.Close}, nil

	default:
		logger.Info("knowledge bases kept in memory")
		return repository.NewKVMemory(), nil, nil
	}
}
