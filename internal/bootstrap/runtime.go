// Package bootstrap wires process-level dependencies for the command entry points.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"amizades/internal/cache"
	"amizades/internal/config"
	"amizades/internal/database"
	"amizades/internal/middleware"
	"amizades/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime holds the connections shared by the server and the tools.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema opens the database without applying migrations.
	SkipSchema bool
	// SkipRedis leaves Redis nil.
	SkipRedis bool
}

// TracingConfig maps application configuration onto the tracer settings.
func TracingConfig(cfg *config.Config) observability.TracingConfig {
	return observability.TracingConfig{
		ServiceName:    "amizades",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	}
}

// InitRuntime starts tracing, connects to the database and, when reachable, Redis.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdown, err := observability.InitTracing(TracingConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	var db *gorm.DB
	if opts.SkipSchema {
		db, err = database.Open(ctx, cfg)
	} else {
		db, err = database.Connect(ctx, cfg)
	}
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rt := &Runtime{DB: db, shutdownTracing: shutdown}
	if !opts.SkipRedis {
		rt.Redis = connectRedis(ctx, cfg.RedisURL)
	}
	return rt, nil
}

// connectRedis returns nil when Redis is unreachable; the service runs without a cache.
func connectRedis(ctx context.Context, addr string) *redis.Client {
	rdb, err := cache.NewClient(ctx, addr)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Redis connection warning (continuing without cache)",
			slog.String("addr", addr), slog.String("error", err.Error()))
		return nil
	}
	middleware.Logger.InfoContext(ctx, "Redis connected successfully")
	return rdb
}

// Close flushes traces. Database and Redis are owned by whoever was handed them.
func (r *Runtime) Close(ctx context.Context) error {
	if r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}
