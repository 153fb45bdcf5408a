package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	monitoringReadTimeout  = 5 * time.Second
	monitoringWriteTimeout = 10 * time.Second
)

// newMonitoringServer builds the server that provides health check and metrics endpoints.
//
// Parameters:
// - ctx: A context.Context for logging.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - ping: Checks the storage backend.
// - port: The port number on which the server will listen.
func newMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	ping func(ctx context.Context) error,
	port int,
) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthzHandler(log, ping))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  monitoringReadTimeout,
		WriteTimeout: monitoringWriteTimeout,
	}
}

func healthzHandler(log *slog.Logger, ping func(ctx context.Context) error) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		log.DebugContext(ctx, "Performing health checks...")

		status, body := http.StatusOK, "OK"
		if err := ping(ctx); err != nil {
			log.WarnContext(ctx, "Storage ping failed", "error", err)
			status, body = http.StatusServiceUnavailable, "DB ping failed"
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	}
}
