// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bureau-foundation/being/lib/challengestore"
	"github.com/bureau-foundation/being/lib/clock"
	"github.com/bureau-foundation/being/lib/config"
	"github.com/bureau-foundation/being/lib/ratelimit"
	"github.com/bureau-foundation/being/lib/registration"
	"github.com/bureau-foundation/being/lib/sqlitepool"
)

// challengeStore is a registration.Store that can also drop expired
// rows.
type challengeStore interface {
	registration.Store
	PurgeExpired(ctx context.Context) (int, error)
}

// beingRepository is the being directory behind Complete.
type beingRepository interface {
	registration.BeingUpserter
	count(ctx context.Context) (int, error)
}

type daemonOptions struct {
	// Logger is required.
	Logger *slog.Logger

	// Clock defaults to the real clock.
	Clock clock.Clock

	// Registry receives every collector. Nil creates a fresh registry
	// with the Go and process collectors.
	Registry *prometheus.Registry
}

// daemon owns the storage, registration service, and HTTP handlers.
type daemon struct {
	service  *registration.Service
	store    challengeStore
	beings   beingRepository
	limiter  *ratelimit.Limiter
	registry *prometheus.Registry
	logger   *slog.Logger

	rateLimited prometheus.Counter

	// pool is nil for the memory backend.
	pool *sqlitepool.Pool
}

func newDaemon(cfg *config.Config, options daemonOptions) (*daemon, error) {
	if options.Logger == nil {
		return nil, errors.New("being-idp: Logger is required")
	}
	logger := options.Logger
	clk := clock.OrReal(options.Clock)

	ttl, err := cfg.ChallengeTTL()
	if err != nil {
		return nil, err
	}

	registry := options.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	d := &daemon{
		registry: registry,
		logger:   logger,
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "being_http_rate_limited_total",
			Help: "Registration requests rejected by the per-client rate limit.",
		}),
	}
	if err := registry.Register(d.rateLimited); err != nil {
		return nil, fmt.Errorf("registering rate limit counter: %w", err)
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		d.store = challengestore.NewMemory(challengestore.MemoryConfig{TTL: ttl, Clock: clk})
		d.beings = newMemoryBeings(clk)
	case config.BackendSQLite:
		pool, err := sqlitepool.Open(sqlitepool.Config{
			Path:     cfg.Storage.Path,
			PoolSize: cfg.Storage.PoolSize,
			Schema:   challengestore.Schema + beingSchema,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		d.pool = pool
		store, err := challengestore.NewSQLite(challengestore.SQLiteConfig{
			Pool:   pool,
			TTL:    ttl,
			Clock:  clk,
			Logger: logger,
		})
		if err != nil {
			pool.Close()
			return nil, err
		}
		d.store = store
		d.beings = newSQLiteBeings(pool, clk)
	default:
		return nil, fmt.Errorf("being-idp: unknown storage backend %q", cfg.Storage.Backend)
	}

	metrics, err := registration.NewMetrics(registry)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.service, err = registration.NewService(registration.Config{
		Store:       d.store,
		Beings:      d.beings,
		Clock:       clk,
		Logger:      logger,
		Metrics:     metrics,
		NonceLength: cfg.Challenges.NonceLength,
	})
	if err != nil {
		d.Close()
		return nil, err
	}

	if cfg.RateLimit.Enabled {
		d.limiter, err = ratelimit.New(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Clock:             clk,
		})
		if err != nil {
			d.Close()
			return nil, err
		}
	}
	return d, nil
}

// purgeLoop deletes expired challenges every interval until ctx is
// done.
func (d *daemon) purgeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.purge(ctx)
		}
	}
}

func (d *daemon) purge(ctx context.Context) int {
	purged, err := d.store.PurgeExpired(ctx)
	if err != nil {
		d.logger.Error("purging expired challenges", "error", err)
		return 0
	}
	return purged
}

// Close releases the SQLite pool, if any.
func (d *daemon) Close() error {
	if d.pool == nil {
		return nil
	}
	return d.pool.Close()
}
