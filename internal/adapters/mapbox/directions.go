// Package mapbox implements the directions provider against the Mapbox
// Directions v5 API.
package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/pkg/metrics"
	"github.com/zulunav/navproxy/internal/pkg/polyline"
)

// Client is a directions provider backed by Mapbox. It owns exactly one
// outbound call per GetRoute; nothing is retried.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a Mapbox directions client. An empty token is allowed;
// calls then fail fast with domain.ErrProviderUnavailable before any I/O.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, token: token}
}

// profiles maps our travel modes to Mapbox routing profiles. Transit has no
// upstream profile: it falls back to driving and the returned route carries
// ModeFallback so the HTTP layer can warn the caller.
var profiles = map[domain.TravelMode]string{
	domain.ModeDriving:   "driving",
	domain.ModeWalking:   "walking",
	domain.ModeBicycling: "cycling",
	domain.ModeTransit:   "driving",
}

// ---- Upstream response shapes (Mapbox coordinate order is [lon, lat]) ----

type directionsResponse struct {
	Code   string          `json:"code"`
	Routes []upstreamRoute `json:"routes"`
}

type upstreamRoute struct {
	Distance float64          `json:"distance"` // meters
	Duration float64          `json:"duration"` // seconds
	Geometry upstreamGeometry `json:"geometry"`
	Legs     []upstreamLeg    `json:"legs"`
}

type upstreamGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type upstreamLeg struct {
	Distance float64        `json:"distance"`
	Duration float64        `json:"duration"`
	Steps    []upstreamStep `json:"steps"`
}

type upstreamStep struct {
	Distance float64          `json:"distance"`
	Duration float64          `json:"duration"`
	Maneuver upstreamManeuver `json:"maneuver"`
	Geometry upstreamGeometry `json:"geometry"`
}

type upstreamManeuver struct {
	Instruction string    `json:"instruction"`
	Location    []float64 `json:"location"`
}

// GetRoute fetches and normalizes a route between two points.
func (c *Client) GetRoute(ctx context.Context, origin, destination domain.GeoPoint, mode domain.TravelMode) (*domain.Route, error) {
	if c.token == "" {
		return nil, fmt.Errorf("mapbox: access token not configured: %w", domain.ErrProviderUnavailable)
	}

	profile, ok := profiles[mode]
	if !ok {
		return nil, fmt.Errorf("mapbox: unsupported travel mode %q", mode)
	}

	reqURL := fmt.Sprintf("%s/directions/v5/mapbox/%s/%f,%f;%f,%f?geometries=geojson&steps=true&overview=full&access_token=%s",
		c.baseURL, profile,
		origin.Longitude, origin.Latitude,
		destination.Longitude, destination.Latitude,
		url.QueryEscape(c.token),
	)

	start := time.Now()
	body, err := c.do(ctx, reqURL)
	if err != nil {
		metrics.ObserveProvider("mapbox", "error", time.Since(start))
		return nil, err
	}
	metrics.ObserveProvider("mapbox", "ok", time.Since(start))

	var resp directionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mapbox: decode response: %w: %v", domain.ErrProviderUnavailable, err)
	}

	switch {
	case resp.Code == "NoRoute", resp.Code == "NoSegment", resp.Code == "Ok" && len(resp.Routes) == 0:
		return nil, domain.ErrNoRoute
	case resp.Code != "Ok":
		slog.Warn("mapbox returned non-ok code", "code", resp.Code)
		return nil, fmt.Errorf("mapbox: upstream code %s: %w", resp.Code, domain.ErrProviderUnavailable)
	}

	route := normalizeRoute(&resp.Routes[0])
	route.ModeFallback = mode == domain.ModeTransit
	return route, nil
}

func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("mapbox: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox: request failed: %w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("mapbox: read response: %w: %v", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("mapbox non-200", "status", resp.StatusCode, "body_bytes", len(body))
		return nil, fmt.Errorf("mapbox: upstream status %d: %w", resp.StatusCode, domain.ErrProviderUnavailable)
	}

	return body, nil
}

// normalizeRoute flattens the first upstream candidate into the canonical
// shape: km/min rounded totals, plain-text instructions, re-encoded geometry.
func normalizeRoute(r *upstreamRoute) *domain.Route {
	route := &domain.Route{
		DistanceText:    fmt.Sprintf("%d km", int(math.Round(r.Distance/1000))),
		DurationText:    fmt.Sprintf("%d mins", int(math.Round(r.Duration/60))),
		EncodedPolyline: polyline.Encode(toPoints(r.Geometry.Coordinates)),
	}

	for _, l := range r.Legs {
		leg := domain.Leg{
			DistanceText: fmt.Sprintf("%d km", int(math.Round(l.Distance/1000))),
			DurationText: fmt.Sprintf("%d mins", int(math.Round(l.Duration/60))),
		}
		for _, s := range l.Steps {
			leg.Steps = append(leg.Steps, normalizeStep(&s))
		}
		route.Legs = append(route.Legs, leg)
	}

	return route
}

func normalizeStep(s *upstreamStep) domain.Step {
	start := lonLatPoint(s.Maneuver.Location)
	end := start
	if n := len(s.Geometry.Coordinates); n > 0 {
		end = lonLatPoint(s.Geometry.Coordinates[n-1])
	}
	return domain.Step{
		Instruction:   stripHTML(s.Maneuver.Instruction),
		DistanceText:  fmt.Sprintf("%d m", int(math.Round(s.Distance))),
		DurationText:  fmt.Sprintf("%d s", int(math.Round(s.Duration))),
		StartLocation: start,
		EndLocation:   end,
	}
}

// lonLatPoint converts a Mapbox [lon, lat] pair into the canonical model.
// This is the only place the order flip happens.
func lonLatPoint(pair []float64) domain.GeoPoint {
	if len(pair) < 2 {
		return domain.GeoPoint{}
	}
	return domain.GeoPoint{Latitude: pair[1], Longitude: pair[0]}
}

func toPoints(coords [][]float64) []domain.GeoPoint {
	points := make([]domain.GeoPoint, 0, len(coords))
	for _, c := range coords {
		points = append(points, lonLatPoint(c))
	}
	return points
}
