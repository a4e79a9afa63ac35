package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/core/ports"
)

const (
	defaultNearbyRadius = 1500.0
	maxNearbyRadius     = 50000.0
	maxQueryLength      = 200
)

// PlacesService validates place queries and delegates to the configured
// provider. Canonical places are built per request and never cached.
type PlacesService struct {
	provider ports.PlacesProvider
}

// NewPlacesService creates a new PlacesService.
func NewPlacesService(provider ports.PlacesProvider) *PlacesService {
	return &PlacesService{provider: provider}
}

// Autocomplete returns suggestions for a partial input.
func (s *PlacesService) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("input must not be empty")
	}
	if len(input) > maxQueryLength {
		return nil, fmt.Errorf("input too long (max %d characters)", maxQueryLength)
	}
	return s.provider.Autocomplete(ctx, input)
}

// Details resolves one place by its composite id.
func (s *PlacesService) Details(ctx context.Context, placeID string) (*domain.Place, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, fmt.Errorf("place id must not be empty")
	}
	return s.provider.Details(ctx, placeID)
}

// Nearby searches for a category around a center. A non-positive or absurd
// radius falls back to the default.
func (s *PlacesService) Nearby(ctx context.Context, center domain.GeoPoint, category string, radiusMeters float64) ([]domain.Place, error) {
	if !center.Valid() {
		return nil, fmt.Errorf("invalid center coordinates")
	}
	if radiusMeters <= 0 || radiusMeters > maxNearbyRadius {
		radiusMeters = defaultNearbyRadius
	}
	return s.provider.Nearby(ctx, center, strings.TrimSpace(category), radiusMeters)
}

// TextSearch runs a free-text global search.
func (s *PlacesService) TextSearch(ctx context.Context, query string) ([]domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if len(query) > maxQueryLength {
		return nil, fmt.Errorf("query too long (max %d characters)", maxQueryLength)
	}
	return s.provider.TextSearch(ctx, query)
}
