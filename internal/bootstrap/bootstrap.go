// Package bootstrap wires configuration into a ready ApplicationService for
// the dashboard binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"business-dashboard/internal/ai"
	"business-dashboard/internal/app"
	"business-dashboard/internal/auth"
	"business-dashboard/internal/cache"
	"business-dashboard/internal/config"
	"business-dashboard/internal/db"
	"business-dashboard/internal/store"
	"business-dashboard/internal/telemetry"

	"go.uber.org/zap"
)

const memoryPurgeInterval = 5 * time.Minute

// Deps is everything a binary needs after startup.
type Deps struct {
	Service app.ApplicationService
	Tokens  *auth.Tokens
	Metrics *telemetry.Metrics

	closers []func()
}

// Close releases the Redis client and Postgres pool, newest first.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// New builds the service from cfg and generates the first dataset. opts are
// applied after the config-derived options, so callers can override them.
// Background work started here stops when ctx is cancelled.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...app.Option) (*Deps, error) {
	d := &Deps{
		Tokens:  auth.NewTokens(cfg.Auth.JWTSecret),
		Metrics: telemetry.New(cfg.MetricsPrefix),
	}

	svcOpts := []app.Option{
		app.WithMetrics(d.Metrics),
		app.WithInsightsTTL(cfg.InsightsTTL),
	}

	if cfg.Generator.Seed != nil {
		svcOpts = append(svcOpts, app.WithSeed(*cfg.Generator.Seed))
	}

	if cfg.AIEnabled() {
		svcOpts = append(svcOpts, app.WithAnalyst(ai.NewAgent(cfg.AI.APIKey, cfg.AI.Model)))
	} else {
		log.Warn("OPENAI_API_KEY is not set; chat and insights run in offline mode")
	}

	svcOpts = append(svcOpts, app.WithCache(d.insightsCache(ctx, cfg, log)))

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
		svcOpts = append(svcOpts, app.WithSnapshotStore(store.NewSnapshotStore(pool)))
		log.Info("snapshot export enabled")
	}

	d.Service = app.NewAppService(append(svcOpts, opts...)...)
	if _, err := d.Service.Regenerate(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("initial dataset: %w", err)
	}
	return d, nil
}

// insightsCache returns Redis when configured and reachable, otherwise an
// in-process store.
func (d *Deps) insightsCache(ctx context.Context, cfg *config.Config, log *zap.Logger) cache.Store {
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			d.closers = append(d.closers, func() { _ = rdb.Close() })
			log.Info("insights cache: redis", zap.String("addr", cfg.Redis.Addr))
			return cache.NewRedisStore(rdb, cfg.MetricsPrefix)
		}
		log.Warn("redis unavailable, falling back to in-memory insights cache", zap.Error(err))
	}

	mem := cache.NewMemoryStore()
	mem.StartPurge(ctx, memoryPurgeInterval)
	return mem
}
