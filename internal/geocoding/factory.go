package geocoding

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/proximity/internal/config"
	"googlemaps.github.io/maps"
)

// Geocoder names accepted in configuration. An empty name disables geocoding.
const (
	ProviderGoogle    = "google"
	ProviderNominatim = "nominatim"
)

var (
	// ErrUnsupportedProvider is returned for an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported geocoding provider")
	// ErrMissingAPIKey is returned when Google is selected without a key.
	ErrMissingAPIKey = errors.New("API key is required for Google provider")
)

// NewProvider creates the geocoder selected by cfg.
// It returns a nil Provider and no error when cfg.Provider is empty.
func NewProvider(cfg config.GeocoderConfig, log *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil //nolint:nilnil // geocoding disabled
	case ProviderGoogle:
		google, err := newGoogleProvider(cfg, log)
		if err != nil {
			return nil, err
		}
		return google, nil
	case ProviderNominatim:
		return newNominatimProvider(cfg, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

func newGoogleProvider(cfg config.GeocoderConfig, log *slog.Logger) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if cfg.RateLimit > 0 {
		opts = append(opts, maps.WithRateLimit(cfg.RateLimit))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, log), nil
}

// newNominatimProvider clamps the rate to the public instance's usage policy of one request per second.
func newNominatimProvider(cfg config.GeocoderConfig, log *slog.Logger) *NominatimProvider {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 || rateLimit > nominatimMaxRate {
		log.Warn("Nominatim rate limit out of bounds, using the usage policy value",
			"configured", rateLimit, "used", nominatimMaxRate)
		rateLimit = nominatimMaxRate
	}

	return NewNominatimProvider(rateLimit, log)
}
