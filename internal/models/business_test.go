package models_test

import (
	"math"
	"testing"

	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint_Validate(t *testing.T) {
	t.Parallel()

	valid := []models.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 90, Longitude: 180},
		{Latitude: -90, Longitude: -180},
		{Latitude: 39.7392, Longitude: -104.9903},
	}
	for _, p := range valid {
		require.NoError(t, p.Validate(), "point %+v should be valid", p)
	}

	invalid := []models.Point{
		{Latitude: 90.0001, Longitude: 0},
		{Latitude: -91, Longitude: 0},
		{Latitude: 0, Longitude: 180.5},
		{Latitude: 0, Longitude: -181},
		{Latitude: math.NaN(), Longitude: 0},
		{Latitude: 0, Longitude: math.Inf(1)},
	}
	for _, p := range invalid {
		err := p.Validate()
		require.ErrorIs(t, err, models.ErrInvalidCoordinates, "point %+v should be invalid", p)
	}
}

func TestPoint_AngularDistance(t *testing.T) {
	t.Parallel()

	const earthRadiusKm = 6371.0

	t.Run("same point is zero", func(t *testing.T) {
		p := models.Point{Latitude: 39.7392, Longitude: -104.9903}
		assert.InDelta(t, 0, p.AngularDistance(p), 1e-12)
	})

	t.Run("denver to boulder is about 39 km apart", func(t *testing.T) {
		denver := models.Point{Latitude: 39.7392, Longitude: -104.9903}
		boulder := models.Point{Latitude: 40.01499, Longitude: -105.27055}

		km := denver.AngularDistance(boulder) * earthRadiusKm
		assert.InDelta(t, 38.9, km, 0.5)
	})

	t.Run("symmetric across the prime meridian", func(t *testing.T) {
		east := models.Point{Latitude: 51.5, Longitude: 0.001}
		west := models.Point{Latitude: 51.5, Longitude: -0.001}

		assert.InDelta(t, east.AngularDistance(west), west.AngularDistance(east), 1e-15)
		assert.InDelta(t, 0.138, east.AngularDistance(west)*earthRadiusKm, 0.01)
	})

	t.Run("antipodal points are pi apart", func(t *testing.T) {
		a := models.Point{Latitude: 0, Longitude: 0}
		b := models.Point{Latitude: 0, Longitude: 180}
		assert.InDelta(t, math.Pi, a.AngularDistance(b), 1e-9)
	})
}

func TestBusinessInput(t *testing.T) {
	t.Parallel()

	in := models.BusinessInput{Address: "1 Main St", City: "Denver", Country: "USA"}
	assert.Equal(t, "1 Main St, Denver, USA", in.FullAddress())

	loc := models.Point{Latitude: 1, Longitude: 2}
	b := in.Business("biz-1", loc)
	assert.Equal(t, "biz-1", b.Key())
	assert.Equal(t, models.Business{
		ID: "biz-1", Address: "1 Main St", City: "Denver", Country: "USA", Location: loc,
	}, b)
}
