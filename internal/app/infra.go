package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/dentelia/dentelia_backend/config"
	"github.com/dentelia/dentelia_backend/internal/store"
	"github.com/dentelia/dentelia_backend/pkg/database"
	"github.com/dentelia/dentelia_backend/pkg/observability"
	redispkg "github.com/dentelia/dentelia_backend/pkg/redis"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideRecordStore),
	fx.Provide(ProvideOTel),
)

// ProvideRedis connects to Redis when an address is configured. The
// client is optional downstream: the memory and postgres store drivers
// run without it.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideRecordStore builds the RecordStore backend selected by
// store.driver.
func ProvideRecordStore(lc fx.Lifecycle, cfg *config.Config, rdb *redis.Client) (store.RecordStore, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return store.NewMemory(), nil

	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("store driver is redis but redis.addr is not configured")
		}
		return store.NewRedis(rdb, cfg.Store.KeyPrefix), nil

	case "postgres":
		db, err := database.New(database.FromCentralConfig(cfg.Store.Postgres))
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				slog.Debug("closing database connection")
				return db.Close()
			},
		})

		pg := store.NewPostgres(db.GetConnection())
		if cfg.Store.Postgres.Migrations.AutoMigrate {
			if err := pg.Migrate(context.Background()); err != nil {
				return nil, err
			}
		}
		return pg, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
