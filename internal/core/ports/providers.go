package ports

import (
	"context"

	"github.com/zulunav/navproxy/internal/core/domain"
)

// DirectionsProvider computes a route between two points via an upstream
// directions engine. Implementations return domain.ErrNoRoute when the
// upstream reports zero viable routes and domain.ErrProviderUnavailable on
// transport failures or non-success upstream statuses.
type DirectionsProvider interface {
	GetRoute(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error)
}

// PlacesProvider answers place queries via an upstream geocoding engine.
// Zero matches is a valid empty result, not an error; domain.ErrNotFound is
// reserved for Details misses.
type PlacesProvider interface {
	Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error)
	Details(ctx context.Context, placeID string) (*domain.Place, error)
	Nearby(ctx context.Context, center domain.GeoPoint, category string, radiusMeters float64) ([]domain.Place, error)
	TextSearch(ctx context.Context, query string) ([]domain.Place, error)
}
