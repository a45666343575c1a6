package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/masumislambadsha/zavisoft/internal/config"
	"github.com/masumislambadsha/zavisoft/internal/repository"
	"github.com/masumislambadsha/zavisoft/internal/repository/file"
	"github.com/masumislambadsha/zavisoft/internal/repository/memory"
	pgrepo "github.com/masumislambadsha/zavisoft/internal/repository/postgres"
	redisrepo "github.com/masumislambadsha/zavisoft/internal/repository/redis"
	"github.com/masumislambadsha/zavisoft/pkg/database"
)

// storage is the selected key/value backend and how to release it.
type storage struct {
	kv      repository.KV
	backend string
	close   func() error
}

func nopClose() error { return nil }

// openStorage connects the backend named by STORAGE_BACKEND. Postgres pools
// register their stats with reg and are migrated before use.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*storage, error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rc := cfg.Redis()
		rdb, err := database.NewRedisClient(ctx, rc, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", rc.Addr()),
			slog.Int("db", rc.DB),
		)
		return &storage{kv: redisrepo.NewKV(rdb), backend: cfg.StorageBackend, close: rdb.Close}, nil

	case config.BackendPostgres:
		pc := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, pc, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", pc.Host),
			slog.Int("port", pc.Port),
			slog.String("database", pc.DBName),
		)
		if reg != nil {
			if err := database.RegisterPoolMetrics(reg, pool, serviceName); err != nil {
				logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
			}
		}

		if err := pgrepo.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		return &storage{
			kv:      pgrepo.NewKV(pool),
			backend: cfg.StorageBackend,
			close:   func() error { pool.Close(); return nil },
		}, nil

	case config.BackendFile:
		kv, err := file.Open(cfg.StorageFilePath)
		if err != nil {
			return nil, fmt.Errorf("open storage file: %w", err)
		}
		logger.Info("using file storage", slog.String("path", kv.Path()))
		return &storage{kv: kv, backend: cfg.StorageBackend, close: nopClose}, nil

	case config.BackendMemory:
		logger.Warn("using in-memory storage; carts and wishlists are lost on restart")
		return &storage{kv: memory.New(), backend: cfg.StorageBackend, close: nopClose}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
