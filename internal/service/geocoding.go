package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/proximity/internal/models"
)

// ErrMissingLocation is returned when a business has no position and none can be geocoded.
var ErrMissingLocation = errors.New("location is required")

// resolveLocation returns the supplied position, or geocodes the input's address when the
// position was omitted and a geocoder is configured.
func (s *BusinessService) resolveLocation(ctx context.Context, in models.BusinessInput) (models.Point, error) {
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return models.Point{}, err
		}
		return *in.Location, nil
	}

	address := in.FullAddress()
	if s.provider == nil || address == "" {
		return models.Point{}, ErrMissingLocation
	}

	startTime := time.Now()
	point, err := s.provider.Geocode(ctx, address)
	s.metrics.GeocoderSeconds.WithLabelValues(s.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		s.metrics.GeocoderErrors.Inc()
		s.log.ErrorContext(ctx, "Failed to geocode", "address", address, "error", err)
		return models.Point{}, fmt.Errorf("%w: geocoding %q failed: %w", ErrMissingLocation, address, err)
	}
	if err = point.Validate(); err != nil {
		return models.Point{}, err
	}
	s.log.DebugContext(ctx, "Resolved business address", "address", address,
		"lat", point.Latitude, "lon", point.Longitude)

	return *point, nil
}
