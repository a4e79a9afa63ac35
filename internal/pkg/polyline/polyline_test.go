package polyline_test

import (
	"math"
	"testing"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/pkg/polyline"
)

func TestEncode_KnownVector(t *testing.T) {
	// Reference vector from the published polyline algorithm docs.
	points := []domain.GeoPoint{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
	}

	got := polyline.Encode(points)
	want := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestEncode_Empty(t *testing.T) {
	if got := polyline.Encode(nil); got != "" {
		t.Errorf("Encode(nil) = %q, want empty", got)
	}
}

func TestDecode_Empty(t *testing.T) {
	points, err := polyline.Decode("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected empty sequence, got %d points", len(points))
	}
}

func TestRoundTrip(t *testing.T) {
	cases := [][]domain.GeoPoint{
		{{Latitude: 9.03, Longitude: 38.74}, {Latitude: 9.05, Longitude: 38.76}},
		{{Latitude: 0, Longitude: 0}},
		{{Latitude: -43.26312, Longitude: -2.93499}, {Latitude: -43.26401, Longitude: -2.93512}},
		{
			{Latitude: 51.50732, Longitude: -0.12765},
			{Latitude: 51.50632, Longitude: -0.12865},
			{Latitude: 51.50532, Longitude: -0.12965},
		},
	}

	for _, points := range cases {
		encoded := polyline.Encode(points)
		decoded, err := polyline.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%q): %v", encoded, err)
		}
		if len(decoded) != len(points) {
			t.Fatalf("got %d points, want %d", len(decoded), len(points))
		}
		for i := range points {
			if math.Abs(decoded[i].Latitude-points[i].Latitude) > 1e-5 ||
				math.Abs(decoded[i].Longitude-points[i].Longitude) > 1e-5 {
				t.Errorf("point %d: got %+v, want %+v", i, decoded[i], points[i])
			}
		}
	}
}

func TestRoundTrip_LossyContract(t *testing.T) {
	// Sub-1e-5 precision is discarded; decode must return the 5-decimal rounding.
	points := []domain.GeoPoint{{Latitude: 43.2631234567, Longitude: -2.9349987654}}

	decoded, err := polyline.Decode(polyline.Encode(points))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded[0].Latitude != 43.26312 {
		t.Errorf("latitude = %v, want 43.26312", decoded[0].Latitude)
	}
	if decoded[0].Longitude != -2.935 {
		t.Errorf("longitude = %v, want -2.935", decoded[0].Longitude)
	}
}

func TestEncode_Idempotent(t *testing.T) {
	points := []domain.GeoPoint{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
	}
	if polyline.Encode(points) != polyline.Encode(points) {
		t.Error("encoding the same sequence twice produced different strings")
	}
}

func TestDecode_Truncated(t *testing.T) {
	// A continuation bit with nothing after it.
	if _, err := polyline.Decode("_p~iF~"); err == nil {
		t.Error("expected error for truncated input")
	}
}
