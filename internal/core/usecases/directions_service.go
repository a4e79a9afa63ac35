package usecases

import (
	"context"
	"fmt"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/core/ports"
)

// DirectionsService validates directions requests and delegates to the
// configured provider. One upstream attempt per request; retries are the
// caller's business.
type DirectionsService struct {
	provider ports.DirectionsProvider
}

// NewDirectionsService creates a new DirectionsService.
func NewDirectionsService(provider ports.DirectionsProvider) *DirectionsService {
	return &DirectionsService{provider: provider}
}

// GetRoute returns the canonical route between two points.
// domain.ErrNoRoute and domain.ErrProviderUnavailable pass through untouched
// so the HTTP layer can keep them distinct.
func (s *DirectionsService) GetRoute(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error) {
	if !origin.Valid() {
		return nil, fmt.Errorf("invalid origin coordinates")
	}
	if !destination.Valid() {
		return nil, fmt.Errorf("invalid destination coordinates")
	}

	return s.provider.GetRoute(ctx, origin, destination, mode)
}
