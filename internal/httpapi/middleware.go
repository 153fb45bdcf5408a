package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/proximity/internal/logging"
	"github.com/UnknownOlympus/proximity/internal/metrics"
	"github.com/google/uuid"
)

// CorrelationHeader carries the request correlation id in both directions.
const CorrelationHeader = "correlation-id"

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h http.Handler, middleware ...Middleware) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// Recover turns a panic in a handler into a bare 500 response.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.ErrorContext(r.Context(), "Unhandled panic", "method", r.Method, "path", r.URL.Path, "panic", p)
					if rec.status == 0 {
						rec.WriteHeader(http.StatusInternalServerError)
					}
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// CorrelationID reuses the caller's correlation id when it is a valid UUID, or assigns a new one.
// The id is echoed in the response and stored in the request context.
func CorrelationID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(CorrelationHeader))
			if err != nil {
				id = uuid.New()
			}

			w.Header().Set(CorrelationHeader, id.String())
			next.ServeHTTP(w, r.WithContext(logging.WithCorrelationID(r.Context(), id.String())))
		})
	}
}

// Logging logs the start and the end of every request.
func Logging(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			log.InfoContext(r.Context(), "Request started", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(rec, r)
			log.InfoContext(r.Context(), "Request finished",
				"method", r.Method, "path", r.URL.Path, "status", rec.code(), "duration", time.Since(start))
		})
	}
}

// Metrics records request counts and durations by route pattern.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.code())).Inc()
			m.HTTPSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
