package proximity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/proximity/internal/metrics"
	"github.com/UnknownOlympus/proximity/internal/models"
)

// EarthRadiusKm is the mean Earth radius used to turn a surface distance into an angle.
const EarthRadiusKm = 6371.0

// ErrInvalidRadius is returned for radius tokens outside the allow-list.
var ErrInvalidRadius = errors.New("invalid radius")

// Radius is one of the allowed search radii.
type Radius struct {
	token string
	km    float64
}

var allowedRadii = []Radius{
	{token: "0.5km", km: 0.5},
	{token: "1km", km: 1},
	{token: "2km", km: 2},
	{token: "5km", km: 5},
	{token: "20km", km: 20},
}

// AllowedRadii returns the accepted radius tokens in ascending order.
func AllowedRadii() []string {
	tokens := make([]string, len(allowedRadii))
	for i, r := range allowedRadii {
		tokens[i] = r.token
	}
	return tokens
}

// ParseRadius accepts one of the allowed radius tokens, ignoring case and surrounding whitespace.
func ParseRadius(token string) (Radius, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	for _, r := range allowedRadii {
		if r.token == normalized {
			return r, nil
		}
	}

	return Radius{}, fmt.Errorf("%w: %q", ErrInvalidRadius, token)
}

// Kilometers returns the radius as a surface distance.
func (r Radius) Kilometers() float64 { return r.km }

// Radians returns the radius as a central angle on a sphere of EarthRadiusKm.
func (r Radius) Radians() float64 { return r.km / EarthRadiusKm }

func (r Radius) String() string { return r.token }

// CapSearcher finds stored businesses inside a spherical cap.
type CapSearcher interface {
	WithinCap(ctx context.Context, center models.Point, angularRadius float64) ([]models.Business, error)
}

// Engine answers proximity queries.
type Engine struct {
	store   CapSearcher
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine creates an Engine on top of the given cap searcher.
func NewEngine(store CapSearcher, log *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{store: store, log: log, metrics: m}
}

// Search returns every business within radius of center. The radius token and the center are
// validated before storage is touched. No ordering or pagination is applied.
func (e *Engine) Search(ctx context.Context, center models.Point, radius string) ([]models.Business, error) {
	r, err := ParseRadius(radius)
	if err != nil {
		e.metrics.SearchRejected.WithLabelValues("radius").Inc()
		return nil, err
	}

	if err = center.Validate(); err != nil {
		e.metrics.SearchRejected.WithLabelValues("coordinates").Inc()
		return nil, err
	}

	start := time.Now()
	found, err := e.store.WithinCap(ctx, center, r.Radians())
	if err != nil {
		return nil, fmt.Errorf("failed to search within %s: %w", r, err)
	}
	if found == nil {
		found = []models.Business{}
	}

	e.metrics.SearchResults.Observe(float64(len(found)))
	e.log.DebugContext(ctx, "Proximity search completed",
		"lat", center.Latitude, "lon", center.Longitude, "radius", r.String(),
		"results", len(found), "duration", time.Since(start))

	return found, nil
}
