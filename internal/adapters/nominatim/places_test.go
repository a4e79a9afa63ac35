package nominatim

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
)

const searchFixture = `[
  {"osm_type": "node", "osm_id": 3178628943, "lat": "9.0301",
   "lon": "38.7402", "display_name": "Tomoca Coffee, Churchill Avenue, Addis Ababa, Ethiopia",
   "type": "cafe"},
  {"osm_type": "way", "osm_id": 88221678, "lat": "9.0312",
   "lon": "38.7415", "display_name": "Churchill Avenue, Addis Ababa, Ethiopia",
   "type": "primary"}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&http.Client{Timeout: 5 * time.Second}, srv.URL, "navproxy-test/1.0")
}

func TestAutocomplete(t *testing.T) {
	var gotQuery, gotUA string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, searchFixture)
	})

	suggestions, err := client.Autocomplete(context.Background(), "tomoca")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUA != "navproxy-test/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}
	if !strings.Contains(gotQuery, "q=tomoca") || !strings.Contains(gotQuery, "limit=10") {
		t.Errorf("query = %q, want q and limit=10", gotQuery)
	}

	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
	if suggestions[0].PlaceID != "N3178628943" {
		t.Errorf("place id = %q, want N3178628943", suggestions[0].PlaceID)
	}
	if suggestions[1].PlaceID != "W88221678" {
		t.Errorf("place id = %q, want W88221678", suggestions[1].PlaceID)
	}
	if suggestions[0].Description != "Tomoca Coffee, Churchill Avenue, Addis Ababa, Ethiopia" {
		t.Errorf("description = %q", suggestions[0].Description)
	}
	if len(suggestions[0].Types) != 1 || suggestions[0].Types[0] != "cafe" {
		t.Errorf("types = %v", suggestions[0].Types)
	}
}

func TestAutocomplete_ZeroMatchesIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	suggestions, err := client.Autocomplete(context.Background(), "xyzzyplugh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("expected empty result, got %d", len(suggestions))
	}
}

func TestDetails(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, searchFixture[:strings.Index(searchFixture, "},")+1]+"]")
	})

	place, err := client.Details(context.Background(), "N3178628943")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/lookup" {
		t.Errorf("path = %q, want /lookup", gotPath)
	}
	if !strings.Contains(gotQuery, "osm_ids=N3178628943") {
		t.Errorf("query = %q, want osm_ids", gotQuery)
	}

	if place.PlaceID != "N3178628943" {
		t.Errorf("place id = %q", place.PlaceID)
	}
	if place.Name != "Tomoca Coffee" {
		t.Errorf("name = %q, want display name up to first comma", place.Name)
	}
	if place.FormattedAddress != "Tomoca Coffee, Churchill Avenue, Addis Ababa, Ethiopia" {
		t.Errorf("address = %q", place.FormattedAddress)
	}
	if place.Location != (domain.GeoPoint{Latitude: 9.0301, Longitude: 38.7402}) {
		t.Errorf("location = %+v", place.Location)
	}
	if place.OpeningHours != nil || place.Rating != nil || place.PriceLevel != nil {
		t.Error("opening hours, rating and price level must be null")
	}
}

func TestDetails_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	_, err := client.Details(context.Background(), "N999999999")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDetails_MalformedID(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, id := range []string{"", "X123", "N", "N12x3", "3178628943"} {
		if _, err := client.Details(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Details(%q) err = %v, want ErrNotFound", id, err)
		}
	}
	if called {
		t.Error("malformed ids must not reach the upstream")
	}
}

func TestNearby_ViewboxAroundCenter(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, searchFixture)
	})

	center := domain.GeoPoint{Latitude: 9.03, Longitude: 38.74}
	places, err := client.Nearby(context.Background(), center, "cafe", 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotQuery, "bounded=1") {
		t.Errorf("query = %q, want bounded=1", gotQuery)
	}
	if !strings.Contains(gotQuery, "viewbox=") {
		t.Errorf("query = %q, want viewbox", gotQuery)
	}
	if !strings.Contains(gotQuery, "q=cafe") {
		t.Errorf("query = %q, want category as q", gotQuery)
	}
	if len(places) != 2 {
		t.Errorf("got %d places, want 2", len(places))
	}
}

func TestTextSearch_RateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	})

	_, err := client.TextSearch(context.Background(), "addis ababa")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestCompositeID(t *testing.T) {
	cases := []struct {
		osmType string
		osmID   int64
		want    string
	}{
		{"node", 123, "N123"},
		{"way", 456, "W456"},
		{"relation", 789, "R789"},
		{"", 42, "N42"},
	}
	for _, tc := range cases {
		if got := compositeID(tc.osmType, tc.osmID); got != tc.want {
			t.Errorf("compositeID(%q, %d) = %q, want %q", tc.osmType, tc.osmID, got, tc.want)
		}
	}
}
