// Package database provides the Postgres connection behind the postgres
// document store: a pgx pool wrapped in a Bun DB.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"go.uber.org/fx"

	"github.com/emergent-company/emergent.relations/internal/config"
	"github.com/emergent-company/emergent.relations/pkg/logger"
)

var Module = fx.Module("database",
	fx.Provide(
		NewPool,
		NewDB,
		fx.Annotate(
			func(db *bun.DB) bun.IDB { return db },
			fx.As(new(bun.IDB)),
		),
	),
)

const (
	applicationName = "emergent-relations"
	connectTimeout  = 10 * time.Second
)

// PoolConfig translates DatabaseConfig into a pgx pool configuration.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	pc.MaxConns = int32(cfg.MaxOpenConns)
	pc.MinConns = int32(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	pc.MaxConnIdleTime = cfg.MaxIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	return pc, nil
}

// NewPool opens and pings the pgx pool, closing it on app stop.
func NewPool(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	log = log.With(logger.Scope("database"))

	pc, err := PoolConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("database pool created",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("database", cfg.Database.Database),
		slog.Int("max_conns", int(pc.MaxConns)),
	)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			stat := pool.Stat()
			log.Info("closing database pool",
				slog.Int("acquired", int(stat.AcquiredConns())),
				slog.Int64("acquire_count", stat.AcquireCount()),
			)
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

// NewDB wraps the pool in a Bun DB for kb.documents queries.
func NewDB(lc fx.Lifecycle, pool *pgxpool.Pool, cfg *config.Config, log *slog.Logger) *bun.DB {
	log = log.With(logger.Scope("bun"))

	db := bun.NewDB(stdlib.OpenDBFromPool(pool), pgdialect.New())
	if cfg.Database.QueryDebug {
		db.AddQueryHook(&QueryLogger{Log: log, SlowThreshold: cfg.Database.SlowQuery})
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return db.Close()
		},
	})
	return db
}

// QueryLogger is a bun.QueryHook logging failed queries at error, queries
// slower than SlowThreshold at warn and everything else at debug.
type QueryLogger struct {
	Log           *slog.Logger
	SlowThreshold time.Duration
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	attrs := []any{
		slog.String("operation", event.Operation()),
		slog.String("query", event.Query),
		slog.Duration("duration", elapsed),
	}

	switch {
	case event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows):
		h.Log.ErrorContext(ctx, "query error", append(attrs, logger.Error(event.Err))...)
	case h.SlowThreshold > 0 && elapsed > h.SlowThreshold:
		h.Log.WarnContext(ctx, "slow query", attrs...)
	default:
		h.Log.DebugContext(ctx, "query", attrs...)
	}
}
