package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/discipline/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/discipline/internal/training/domain"
	"github.com/felixgeelhaar/discipline/internal/training/infrastructure/persistence"
	"github.com/felixgeelhaar/discipline/pkg/config"
	"github.com/felixgeelhaar/discipline/pkg/observability"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const postgresMaxConns = 4

// openGateway builds the gateway for the configured driver, then decorates
// it with the circuit breaker (remote drivers only) and the async writer.
func (c *Container) openGateway(ctx context.Context) error {
	cfg := c.Config

	gateway, err := c.openDriver(ctx)
	if err != nil {
		return err
	}

	if cfg.BreakerEnabled && cfg.StorageDriver.IsRemote() {
		bc := persistence.DefaultBreakerConfig()
		bc.Name = string(cfg.StorageDriver)
		if cfg.BreakerFailureThreshold > 0 {
			bc.FailureThreshold = uint32(cfg.BreakerFailureThreshold)
		}
		if cfg.BreakerTimeout > 0 {
			bc.Timeout = cfg.BreakerTimeout
		}
		c.Breaker = persistence.NewBreakerGateway(gateway, bc, c.Logger, c.Metrics)
		c.Health.Register("storage.breaker", observability.PingChecker("circuit breaker", false, c.breakerClosed))
		gateway = c.Breaker
	}

	if cfg.AsyncSave {
		c.Async = persistence.NewAsyncGateway(gateway, c.Logger, c.Metrics)
		gateway = c.Async
	}

	c.Gateway = gateway
	return nil
}

func (c *Container) openDriver(ctx context.Context) (domain.Gateway, error) {
	cfg := c.Config
	logger := c.Logger.With("driver", string(cfg.StorageDriver))

	switch cfg.StorageDriver {
	case config.DriverFile:
		gw, err := persistence.NewFileGateway(cfg.StatePath, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Health.Register("storage", observability.PingChecker("state file", true, func(context.Context) error {
			return dirWritable(filepath.Dir(gw.Path()))
		}))
		logger.Debug("using state file", "path", gw.Path())
		return gw, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		c.SQLite = db
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
		}
		c.Health.Register("storage", observability.PingChecker("sqlite", true, db.PingContext))
		logger.Debug("connected to SQLite", "path", cfg.SQLitePath)
		return persistence.NewSQLiteGateway(db, cfg.UserID), nil

	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL, postgresMaxConns)
		if err != nil {
			return nil, err
		}
		c.Postgres = pool
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return nil, fmt.Errorf("failed to migrate PostgreSQL database: %w", err)
		}
		c.Health.Register("storage", observability.PingChecker("postgres", true, pool.Ping))
		logger.Info("connected to PostgreSQL")
		return persistence.NewPostgresGateway(pool, cfg.UserID), nil

	case config.DriverRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.RedisClient = client
		c.Health.Register("storage", observability.PingChecker("redis", true, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
		logger.Info("connected to Redis")
		return persistence.NewRedisGateway(client, cfg.RedisKeyPrefix, cfg.UserID), nil

	case config.DriverMemory:
		logger.Warn("memory storage selected, state is lost on exit")
		gw := persistence.NewMemoryGateway()
		c.Health.Register("storage", observability.PingChecker("memory", true, gw.Ping))
		return gw, nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.StorageDriver)
	}
}

func (c *Container) breakerClosed(context.Context) error {
	if state := c.Breaker.State(); state == gobreaker.StateOpen {
		return fmt.Errorf("storage circuit is %s", state)
	}
	return nil
}

func dirWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
