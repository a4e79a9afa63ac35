// Package nominatim implements the places provider against the Nominatim
// geocoding API (search and lookup endpoints).
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/pkg/geospatial"
	"github.com/zulunav/navproxy/internal/pkg/metrics"
)

const (
	autocompleteLimit = 10
	searchLimit       = 20
)

// Client is a places provider backed by Nominatim. All four operations hit
// the same /search endpoint with different parameterizations, except Details
// which resolves a composite OSM id through /lookup.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// NewClient creates a Nominatim client. The user agent is mandatory per the
// Nominatim usage policy.
func NewClient(httpClient *http.Client, baseURL, userAgent string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, userAgent: userAgent}
}

// searchResult is one entry of a Nominatim JSON response. Coordinates arrive
// as strings; osm_type is "node" | "way" | "relation".
type searchResult struct {
	OSMType     string `json:"osm_type"`
	OSMID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

// Autocomplete returns suggestions for a partial input. Zero matches is a
// valid empty result.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]domain.PlaceSuggestion, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", input)
	q.Set("limit", strconv.Itoa(autocompleteLimit))

	results, err := c.search(ctx, q)
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.PlaceSuggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, domain.PlaceSuggestion{
			PlaceID:     compositeID(r.OSMType, r.OSMID),
			Description: r.DisplayName,
			Types:       []string{r.Type},
		})
	}
	return suggestions, nil
}

// Details resolves a composite place id. A malformed id or an empty lookup
// response is domain.ErrNotFound; only transport-level failures surface as
// domain.ErrProviderUnavailable.
func (c *Client) Details(ctx context.Context, placeID string) (*domain.Place, error) {
	if !validCompositeID(placeID) {
		return nil, fmt.Errorf("nominatim: malformed place id %q: %w", placeID, domain.ErrNotFound)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("osm_ids", placeID)

	results, err := c.get(ctx, "/lookup", q)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domain.ErrNotFound
	}

	place := toPlace(&results[0])
	// Keep the id the caller asked with; lookup echoes the same entity.
	place.PlaceID = placeID
	return place, nil
}

// Nearby searches for a category around a center point. The free-tier search
// API has no radius filter, so the radius becomes a bounded viewbox.
func (c *Client) Nearby(ctx context.Context, center domain.GeoPoint, category string, radiusMeters float64) ([]domain.Place, error) {
	box := geospatial.BoundingBox(center, radiusMeters)

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", category)
	// Nominatim viewbox order: min lon, min lat, max lon, max lat.
	q.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f", box.MinLon, box.MinLat, box.MaxLon, box.MaxLat))
	q.Set("bounded", "1")
	q.Set("limit", strconv.Itoa(searchLimit))

	results, err := c.search(ctx, q)
	if err != nil {
		return nil, err
	}
	return toPlaces(results), nil
}

// TextSearch runs an unbounded global search with no geographic bias.
func (c *Client) TextSearch(ctx context.Context, query string) ([]domain.Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(searchLimit))

	results, err := c.search(ctx, q)
	if err != nil {
		return nil, err
	}
	return toPlaces(results), nil
}

func (c *Client) search(ctx context.Context, q url.Values) ([]searchResult, error) {
	return c.get(ctx, "/search", q)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]searchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveProvider("nominatim", "error", time.Since(start))
		return nil, fmt.Errorf("nominatim: request failed: %w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.ObserveProvider("nominatim", "error", time.Since(start))
		return nil, fmt.Errorf("nominatim: read response: %w: %v", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveProvider("nominatim", "error", time.Since(start))
		slog.Warn("nominatim non-200", "status", resp.StatusCode, "path", path)
		return nil, fmt.Errorf("nominatim: upstream status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}
	metrics.ObserveProvider("nominatim", "ok", time.Since(start))

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("nominatim: decode response: %w: %v", domain.ErrProviderUnavailable, err)
	}
	return results, nil
}

// compositeID builds the provider-prefixed place id: the uppercased first
// letter of the OSM entity kind (node/way/relation → N/W/R) plus the numeric
// id. Unknown kinds default to N, matching entries that omit osm_type.
func compositeID(osmType string, osmID int64) string {
	prefix := "N"
	if osmType != "" {
		prefix = strings.ToUpper(osmType[:1])
	}
	return prefix + strconv.FormatInt(osmID, 10)
}

// validCompositeID checks the N|W|R + digits shape before handing the id to
// the lookup endpoint.
func validCompositeID(id string) bool {
	if len(id) < 2 {
		return false
	}
	switch id[0] {
	case 'N', 'W', 'R':
	default:
		return false
	}
	for i := 1; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

func toPlace(r *searchResult) *domain.Place {
	lat, _ := strconv.ParseFloat(r.Lat, 64)
	lon, _ := strconv.ParseFloat(r.Lon, 64)

	name := r.DisplayName
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}

	return &domain.Place{
		PlaceID:          compositeID(r.OSMType, r.OSMID),
		Name:             name,
		FormattedAddress: r.DisplayName,
		Location:         domain.GeoPoint{Latitude: lat, Longitude: lon},
		Types:            []string{r.Type},
	}
}

func toPlaces(results []searchResult) []domain.Place {
	places := make([]domain.Place, 0, len(results))
	for i := range results {
		places = append(places, *toPlace(&results[i]))
	}
	return places
}
