package httpapi

import (
	"errors"

	"github.com/UnknownOlympus/proximity/internal/models"
)

var errPartialLocation = errors.New("latitude and longitude must be supplied together")

// businessRequest is the body of create and update requests.
// Latitude and longitude are pointers so that an omitted position can be told apart from zero.
type businessRequest struct {
	BusinessID string   `json:"business_id"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Country    string   `json:"country"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (r businessRequest) input() (models.BusinessInput, error) {
	in := models.BusinessInput{
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		Country: r.Country,
	}

	switch {
	case r.Latitude != nil && r.Longitude != nil:
		in.Location = &models.Point{Latitude: *r.Latitude, Longitude: *r.Longitude}
	case r.Latitude != nil || r.Longitude != nil:
		return in, errPartialLocation
	}

	return in, nil
}

type businessResponse struct {
	BusinessID string  `json:"business_id"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

func toResponse(b models.Business) businessResponse {
	return businessResponse{
		BusinessID: b.ID,
		Address:    b.Address,
		City:       b.City,
		State:      b.State,
		Country:    b.Country,
		Latitude:   b.Location.Latitude,
		Longitude:  b.Location.Longitude,
	}
}

func toResponses(businesses []models.Business) []businessResponse {
	out := make([]businessResponse, len(businesses))
	for i, b := range businesses {
		out[i] = toResponse(b)
	}
	return out
}

type errorResponse struct {
	Message string `json:"message"`
}
