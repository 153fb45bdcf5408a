package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/proximity/internal/geocoding"
	"github.com/UnknownOlympus/proximity/internal/metrics"
	"github.com/UnknownOlympus/proximity/internal/models"
	"github.com/UnknownOlympus/proximity/internal/repository"
)

// ErrInvalidID is returned for an empty business id.
var ErrInvalidID = errors.New("business id is required")

// Searcher answers proximity queries.
type Searcher interface {
	Search(ctx context.Context, center models.Point, radius string) ([]models.Business, error)
}

// BusinessService manages businesses on behalf of the HTTP API.
type BusinessService struct {
	log          *slog.Logger
	repo         repository.BusinessStore
	search       Searcher
	provider     geocoding.Provider // provider is nil when geocoding is disabled
	providerName string             // providerName labels geocoder metrics
	metrics      *metrics.Metrics
}

// NewBusinessService creates a new BusinessService. provider may be nil.
func NewBusinessService(
	log *slog.Logger,
	repo repository.BusinessStore,
	search Searcher,
	provider geocoding.Provider,
	providerName string,
	m *metrics.Metrics,
) *BusinessService {
	return &BusinessService{
		log:          log,
		repo:         repo,
		search:       search,
		provider:     provider,
		providerName: providerName,
		metrics:      m,
	}
}

// Create stores a new business. It returns repository.ErrAlreadyExists when the id is taken,
// including when a concurrent create wins the race.
func (s *BusinessService) Create(ctx context.Context, id string, in models.BusinessInput) (*models.Business, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}

	location, err := s.resolveLocation(ctx, in)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up business: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %q", repository.ErrAlreadyExists, id)
	}

	business := in.Business(id, location)
	if err = s.repo.Add(ctx, business); err != nil {
		return nil, err
	}
	s.metrics.BusinessesStored.WithLabelValues("create").Inc()
	s.log.InfoContext(ctx, "Business created", "business_id", id)

	return &business, nil
}

// Get returns the business with the given id or repository.ErrNotFound.
func (s *BusinessService) Get(ctx context.Context, id string) (*models.Business, error) {
	business, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	if business == nil {
		return nil, fmt.Errorf("%w: %q", repository.ErrNotFound, id)
	}

	return business, nil
}

// Update replaces every field of an existing business.
func (s *BusinessService) Update(ctx context.Context, id string, in models.BusinessInput) (*models.Business, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	location, err := s.resolveLocation(ctx, in)
	if err != nil {
		return nil, err
	}

	business := in.Business(id, location)
	if err = s.repo.Update(ctx, business); err != nil {
		return nil, err
	}
	s.metrics.BusinessesStored.WithLabelValues("update").Inc()
	s.log.InfoContext(ctx, "Business updated", "business_id", id)

	return &business, nil
}

// Delete removes an existing business. It returns repository.ErrNotFound when there is none.
func (s *BusinessService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.BusinessesStored.WithLabelValues("delete").Inc()
	s.log.InfoContext(ctx, "Business deleted", "business_id", id)

	return nil
}

// Search returns the businesses within radius of center.
func (s *BusinessService) Search(ctx context.Context, center models.Point, radius string) ([]models.Business, error) {
	return s.search.Search(ctx, center, radius)
}
