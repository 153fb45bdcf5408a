package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/proximity/internal/config"
	"github.com/UnknownOlympus/proximity/internal/geocoding"
	"github.com/UnknownOlympus/proximity/internal/initializer"
	"github.com/UnknownOlympus/proximity/internal/metrics"
	"github.com/UnknownOlympus/proximity/internal/proximity"
	"github.com/UnknownOlympus/proximity/internal/repository"
	"github.com/UnknownOlympus/proximity/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app holds the wired components shared by serve and init.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics

	store repository.BusinessStore
	ping  func(ctx context.Context) error

	reset initializer.Task   // reset runs alone before every other task
	tasks []initializer.Task // tasks run through the bounded pipeline

	close func()
}

// newApp connects the storage driver selected by cfg and builds the initializer tasks.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	// Create a separate registry for metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &app{
		cfg:     cfg,
		log:     log,
		reg:     reg,
		metrics: metrics.NewMetrics(reg),
		close:   func() {},
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := repository.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		a.store = repository.NewBusinessRepository(pool, log)
		a.ping = pool.Ping
		a.close = pool.Close
		a.reset = repository.NewDevReset(pool, log, cfg.ResetAllowed())
		a.tasks = []initializer.Task{
			initializer.WithRetry(
				repository.NewGeoIndex(pool, log),
				initializer.RetryPolicy{Attempts: uint64(cfg.Startup.IndexRetries)}, //nolint:gosec // validated positive
				log,
			),
		}
	case config.DriverMemory:
		a.store = repository.NewMemoryBusinesses()
		a.ping = func(context.Context) error { return nil }
		a.tasks = []initializer.Task{repository.NewMemoryGeoIndex(log)}
	default:
		return nil, fmt.Errorf("%w: storage driver %q", config.ErrInvalidConfig, cfg.Storage.Driver)
	}

	a.tasks = append(a.tasks, repository.NewSeeder(a.store, log, cfg.Database.SeedData, cfg.Database.SeedFile))

	log.InfoContext(ctx, "Storage initialized", "driver", cfg.Storage.Driver)

	return a, nil
}

// initialize runs the reset stage and then the pipeline with the given failure policy.
func (a *app) initialize(ctx context.Context, policy initializer.Policy) error {
	if a.reset != nil {
		reset := initializer.New(a.log, a.metrics, initializer.WithPolicy(initializer.PolicyAbort))
		reset.Register(a.reset)
		if err := reset.Run(ctx); err != nil {
			return err
		}
	}

	pipeline := initializer.New(a.log, a.metrics,
		initializer.WithConcurrency(a.cfg.Startup.Concurrency),
		initializer.WithPolicy(policy),
		initializer.WithBenign(repository.IsReleased),
	)
	pipeline.Register(a.tasks...)

	return pipeline.Run(ctx)
}

// initializeReady runs initialize and marks ready once it has finished.
// Canceled tasks count as released, so a run interrupted by ctx returns an error and leaves ready unset.
func (a *app) initializeReady(ctx context.Context, policy initializer.Policy, ready *initializer.Readiness) error {
	if err := a.initialize(ctx, policy); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("initialization interrupted: %w", err)
	}
	ready.MarkReady()

	return nil
}

// businessService builds the service behind the HTTP API, with a geocoder when one is configured.
func (a *app) businessService() (*service.BusinessService, error) {
	provider, err := geocoding.NewProvider(a.cfg.Geocoder, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	if provider != nil {
		a.log.Info("Geocoding provider initialized", "type", a.cfg.Geocoder.Provider)
	}

	engine := proximity.NewEngine(a.store, a.log, a.metrics)

	return service.NewBusinessService(a.log, a.store, engine, provider, a.cfg.Geocoder.Provider, a.metrics), nil
}
