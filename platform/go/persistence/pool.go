package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool tuning defaults. Every API request runs inside a short transaction
// (SET LOCAL ROLE plus the tenant setting), so connections churn through the
// pool quickly: recycle them on a schedule and do not hold many idle ones.
const (
	defaultMaxConns        = int32(16)
	defaultConnLifetime    = 30 * time.Minute
	defaultConnIdleTime    = 5 * time.Minute
	defaultHealthCheckTick = 30 * time.Second
)

// PoolConfig holds the connection settings for the shared pgx pool. Only
// ConnString is required; zero values fall back to the tuning defaults above.
type PoolConfig struct {
	ConnString        string
	MaxConns          int32
	MinConns          int32
	ConnLifetime      time.Duration
	ConnIdleTime      time.Duration
	HealthCheckPeriod time.Duration
}

// NewPool opens a pgx pool with the workload tuning applied and verifies
// connectivity with a ping before handing it back.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.ConnString == "" {
		return nil, fmt.Errorf("conn string is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	tunePool(poolConfig, cfg)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

func tunePool(poolConfig *pgxpool.Config, cfg PoolConfig) {
	poolConfig.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	poolConfig.MaxConnLifetime = defaultConnLifetime
	if cfg.ConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnLifetime
	}

	poolConfig.MaxConnIdleTime = defaultConnIdleTime
	if cfg.ConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.ConnIdleTime
	}

	poolConfig.HealthCheckPeriod = defaultHealthCheckTick
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
}

// ClosePool shuts down the pool; safe to call with nil.
func ClosePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
