package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidCoordinates is returned when a latitude or longitude lies outside its valid range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Identifiable is implemented by every entity stored through a repository.
// The key must be comparable by value.
type Identifiable[K comparable] interface {
	Key() K
}

// Point represents a geographical position defined by its latitude and longitude in degrees.
type Point struct {
	Latitude  float64 // Latitude of the point, [-90, 90].
	Longitude float64 // Longitude of the point, [-180, 180].
}

// Validate reports whether the point lies within the valid latitude and longitude ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v is out of range [-90, 90]", ErrInvalidCoordinates, p.Latitude)
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v is out of range [-180, 180]", ErrInvalidCoordinates, p.Longitude)
	}

	return nil
}

// AngularDistance returns the great-circle angle in radians between p and other,
// computed with the haversine formula on a sphere.
func (p Point) AngularDistance(other Point) float64 {
	lat1 := degreesToRadians(p.Latitude)
	lat2 := degreesToRadians(other.Latitude)
	dLat := lat2 - lat1
	dLon := degreesToRadians(other.Longitude - p.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)

	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Business is a geotagged directory entry identified by an externally supplied ID.
type Business struct {
	ID       string // ID is the unique, immutable business identifier.
	Address  string // Address is the street address.
	City     string // City the business is located in.
	State    string // State or region.
	Country  string // Country name or code.
	Location Point  // Location is the single position of the business.
}

// Key returns the business identifier.
func (b Business) Key() string {
	return b.ID
}

// BusinessInput holds the mutable fields of a business as supplied by a create or update request.
// A nil Location means the caller did not supply coordinates.
type BusinessInput struct {
	Address  string
	City     string
	State    string
	Country  string
	Location *Point
}

// FullAddress joins the non-empty address parts into a single line suitable for geocoding.
func (in BusinessInput) FullAddress() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{in.Address, in.City, in.State, in.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ", ")
}

// Business builds the full record for id from the input and a resolved location.
func (in BusinessInput) Business(id string, location Point) Business {
	return Business{
		ID:       id,
		Address:  in.Address,
		City:     in.City,
		State:    in.State,
		Country:  in.Country,
		Location: location,
	}
}
