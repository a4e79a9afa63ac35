package mapbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/pkg/polyline"
)

const routeFixture = `{
  "code": "Ok",
  "routes": [{
    "distance": 3241.6,
    "duration": 512.4,
    "geometry": {"coordinates": [[38.74, 9.03], [38.75, 9.04], [38.76, 9.05]]},
    "legs": [{
      "distance": 3241.6,
      "duration": 512.4,
      "steps": [
        {
          "distance": 1500.2,
          "duration": 240.0,
          "maneuver": {"instruction": "Head <b>north</b> on Churchill Ave", "location": [38.74, 9.03]},
          "geometry": {"coordinates": [[38.74, 9.03], [38.75, 9.04]]}
        },
        {
          "distance": 1741.4,
          "duration": 272.4,
          "maneuver": {"instruction": "Turn right", "location": [38.75, 9.04]},
          "geometry": {"coordinates": [[38.75, 9.04], [38.76, 9.05]]}
        }
      ]
    }]
  }]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&http.Client{Timeout: 5 * time.Second}, srv.URL, "test-token"), srv
}

func TestGetRoute_Success(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, routeFixture)
	})

	origin := domain.GeoPoint{Latitude: 9.03, Longitude: 38.74}
	dest := domain.GeoPoint{Latitude: 9.05, Longitude: 38.76}

	route, err := client.GetRoute(context.Background(), origin, dest, domain.ModeDriving)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/directions/v5/mapbox/driving/") {
		t.Errorf("request path = %q, want driving profile", gotPath)
	}
	// Coordinates go out in Mapbox [lon, lat] order.
	if !strings.Contains(gotPath, "38.740000,9.030000;38.760000,9.050000") {
		t.Errorf("request path %q missing lon,lat coordinate pairs", gotPath)
	}

	if route.DistanceText != "3 km" {
		t.Errorf("distance = %q, want \"3 km\"", route.DistanceText)
	}
	if route.DurationText != "9 mins" {
		t.Errorf("duration = %q, want \"9 mins\"", route.DurationText)
	}
	if route.ModeFallback {
		t.Error("driving route should not be flagged as a fallback")
	}

	if len(route.Legs) != 1 || len(route.Legs[0].Steps) != 2 {
		t.Fatalf("got %d legs / %d steps, want 1 leg with 2 steps",
			len(route.Legs), len(route.Legs[0].Steps))
	}

	step := route.Legs[0].Steps[0]
	if step.Instruction != "Head north on Churchill Ave" {
		t.Errorf("instruction = %q, want HTML stripped", step.Instruction)
	}
	if step.DistanceText != "1500 m" || step.DurationText != "240 s" {
		t.Errorf("step texts = %q / %q", step.DistanceText, step.DurationText)
	}
	if step.StartLocation != (domain.GeoPoint{Latitude: 9.03, Longitude: 38.74}) {
		t.Errorf("start location = %+v, coordinate order swapped?", step.StartLocation)
	}
	if step.EndLocation != (domain.GeoPoint{Latitude: 9.04, Longitude: 38.75}) {
		t.Errorf("end location = %+v", step.EndLocation)
	}

	// Geometry is re-encoded through the shared codec.
	decoded, err := polyline.Decode(route.EncodedPolyline)
	if err != nil {
		t.Fatalf("overview polyline does not decode: %v", err)
	}
	if len(decoded) != 3 {
		t.Errorf("decoded polyline has %d points, want 3", len(decoded))
	}
	if decoded[0] != (domain.GeoPoint{Latitude: 9.03, Longitude: 38.74}) {
		t.Errorf("first polyline point = %+v", decoded[0])
	}
}

func TestGetRoute_TransitFallsBackToDriving(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, routeFixture)
	})

	route, err := client.GetRoute(context.Background(),
		domain.GeoPoint{Latitude: 9.03, Longitude: 38.74},
		domain.GeoPoint{Latitude: 9.05, Longitude: 38.76},
		domain.ModeTransit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotPath, "/driving/") {
		t.Errorf("path = %q, transit should use driving profile", gotPath)
	}
	if !route.ModeFallback {
		t.Error("transit route must be flagged as a fallback")
	}
}

func TestGetRoute_BicyclingUsesCyclingProfile(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, routeFixture)
	})

	_, err := client.GetRoute(context.Background(),
		domain.GeoPoint{Latitude: 9.03, Longitude: 38.74},
		domain.GeoPoint{Latitude: 9.05, Longitude: 38.76},
		domain.ModeBicycling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotPath, "/cycling/") {
		t.Errorf("path = %q, want cycling profile", gotPath)
	}
}

func TestGetRoute_NoRoute(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"NoRoute","routes":[]}`)
	})

	_, err := client.GetRoute(context.Background(),
		domain.GeoPoint{Latitude: 9.03, Longitude: 38.74},
		domain.GeoPoint{Latitude: 9.05, Longitude: 38.76},
		domain.ModeDriving)
	if !errors.Is(err, domain.ErrNoRoute) {
		t.Errorf("err = %v, want ErrNoRoute", err)
	}
}

func TestGetRoute_UpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := client.GetRoute(context.Background(),
		domain.GeoPoint{Latitude: 9.03, Longitude: 38.74},
		domain.GeoPoint{Latitude: 9.05, Longitude: 38.76},
		domain.ModeDriving)
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestGetRoute_MissingToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(&http.Client{}, srv.URL, "")
	_, err := client.GetRoute(context.Background(),
		domain.GeoPoint{Latitude: 9.03, Longitude: 38.74},
		domain.GeoPoint{Latitude: 9.05, Longitude: 38.76},
		domain.ModeDriving)

	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
	if called {
		t.Error("no request should be issued without a token")
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Turn right", "Turn right"},
		{"Head <b>north</b>", "Head north"},
		{"<div class=\"step\">Merge&nbsp;left</div>", "Merge left"},
		{"Keep left &amp; continue", "Keep left & continue"},
	}
	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
