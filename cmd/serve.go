package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/UnknownOlympus/proximity/internal/httpapi"
	"github.com/UnknownOlympus/proximity/internal/initializer"
	"golang.org/x/sync/errgroup"
)

// runServe wires the application, starts initialization and serves until ctx is canceled.
func runServe(ctx context.Context, rt *session) error {
	cfg, log := rt.cfg, rt.log

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := a.businessService()
	if err != nil {
		return err
	}

	policy, err := initializer.ParsePolicy(cfg.Startup.FailurePolicy)
	if err != nil {
		return err
	}

	ready := &initializer.Readiness{}
	if cfg.Startup.BlockUntilReady {
		if err = a.initializeReady(ctx, policy, ready); err != nil {
			return fmt.Errorf("startup initialization failed: %w", err)
		}
	} else {
		go func() {
			if errInit := a.initializeReady(ctx, policy, ready); errInit != nil {
				log.ErrorContext(ctx, "Startup initialization failed, staying unready", "error", errInit)
				return
			}
			log.InfoContext(ctx, "Startup initialization finished")
		}()
	}

	api := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      httpapi.NewRouter(svc, ready, log, a.metrics),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	monitoring := newMonitoringServer(ctx, log, a.reg, a.ping, cfg.Monitoring.Port)

	// Log that the application has started.
	log.InfoContext(ctx, "Application started. Press Ctrl+C to stop.", "port", cfg.HTTP.Port)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return listen(api) })
	group.Go(func() error { return listen(monitoring) })
	group.Go(func() error {
		<-groupCtx.Done()
		log.InfoContext(ctx, "Shutdown signal received. Stopping application...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		return errors.Join(api.Shutdown(shutdownCtx), monitoring.Shutdown(shutdownCtx))
	})

	if err = group.Wait(); err != nil {
		return err
	}

	// Log graceful shutdown completion.
	log.InfoContext(ctx, "Application stopped gracefully.")

	return nil
}

// runInit runs every initializer stage once. Any task failure is returned.
func runInit(ctx context.Context, rt *session) error {
	a, err := newApp(ctx, rt.cfg, rt.log)
	if err != nil {
		return err
	}
	defer a.close()

	if err = a.initializeReady(ctx, initializer.PolicyAbort, &initializer.Readiness{}); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	rt.log.InfoContext(ctx, "Initialization finished", "tasks", len(a.tasks))

	return nil
}

func listen(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on %s failed: %w", server.Addr, err)
	}
	return nil
}
