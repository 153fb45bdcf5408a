package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/proximity/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider resolves addresses with the Google Maps Geocoding API.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider creates a GoogleProvider on top of the given client.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Geocode returns the position of the first result Google Maps reports for the address.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Point, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	loc := geocodeResponse[0].Geometry.Location
	point := &models.Point{Latitude: loc.Lat, Longitude: loc.Lng}
	if err = point.Validate(); err != nil {
		return nil, fmt.Errorf("google maps returned an unusable position: %w", err)
	}

	return point, nil
}
