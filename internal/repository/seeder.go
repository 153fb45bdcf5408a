package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/proximity/internal/models"
)

// seedRecord is one entry of a seed file. It uses the public business JSON shape.
type seedRecord struct {
	ID        string  `json:"business_id"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Seeder loads businesses from a JSON file into the store at startup.
type Seeder struct {
	store   BusinessStore
	log     *slog.Logger
	enabled bool
	path    string
}

// NewSeeder creates a Seeder. It does nothing unless enabled.
func NewSeeder(store BusinessStore, log *slog.Logger, enabled bool, path string) *Seeder {
	return &Seeder{store: store, log: log, enabled: enabled, path: path}
}

// Name returns the task name.
func (s *Seeder) Name() string { return "seed" }

// Init reads the seed file and inserts businesses that are not stored yet.
func (s *Seeder) Init(ctx context.Context) error {
	if !s.enabled {
		s.log.DebugContext(ctx, "Seeding is disabled, skipping")
		return nil
	}

	businesses, err := LoadSeedFile(s.path)
	if err != nil {
		return err
	}

	inserted, err := s.store.SeedBusinesses(ctx, businesses)
	if err != nil {
		return fmt.Errorf("failed to seed businesses: %w", err)
	}
	s.log.InfoContext(ctx, "Seed data loaded", "file", s.path, "records", len(businesses), "inserted", inserted)

	return nil
}

// LoadSeedFile reads a JSON array of businesses and validates every position.
func LoadSeedFile(path string) ([]models.Business, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var records []seedRecord
	if err = json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}

	businesses := make([]models.Business, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("seed record %d has no business_id", i)
		}
		loc := models.Point{Latitude: rec.Latitude, Longitude: rec.Longitude}
		if err = loc.Validate(); err != nil {
			return nil, fmt.Errorf("seed record %q: %w", rec.ID, err)
		}
		businesses = append(businesses, models.Business{
			ID:       rec.ID,
			Address:  rec.Address,
			City:     rec.City,
			State:    rec.State,
			Country:  rec.Country,
			Location: loc,
		})
	}

	return businesses, nil
}
