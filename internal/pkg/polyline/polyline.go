// Package polyline implements the encoded polyline algorithm used by the
// directions API contract: 5-decimal fixed precision, delta encoding, 5-bit
// chunks with a continuation bit, ASCII offset 63.
package polyline

import (
	"fmt"
	"math"
	"strings"

	"github.com/zulunav/navproxy/internal/core/domain"
)

const precision = 1e5

// Encode compresses an ordered point sequence into a printable string.
// Coordinates are rounded to 5 decimal places; the encoding is lossy below
// that resolution. An empty sequence encodes to the empty string.
func Encode(points []domain.GeoPoint) string {
	var b strings.Builder
	prevLat, prevLon := 0, 0
	for _, p := range points {
		lat := int(math.Round(p.Latitude * precision))
		lon := int(math.Round(p.Longitude * precision))
		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return b.String()
}

// Decode is the inverse of Encode. It reconstructs the rounded coordinates
// exactly: Decode(Encode(p)) equals p rounded to 5 decimals. Truncated or
// out-of-alphabet input yields an error.
func Decode(s string) ([]domain.GeoPoint, error) {
	var points []domain.GeoPoint
	lat, lon := 0, 0
	i := 0
	for i < len(s) {
		dLat, n, err := decodeValue(s[i:])
		if err != nil {
			return nil, fmt.Errorf("polyline: latitude at offset %d: %w", i, err)
		}
		i += n

		dLon, n, err := decodeValue(s[i:])
		if err != nil {
			return nil, fmt.Errorf("polyline: longitude at offset %d: %w", i, err)
		}
		i += n

		lat += dLat
		lon += dLon
		points = append(points, domain.GeoPoint{
			Latitude:  float64(lat) / precision,
			Longitude: float64(lon) / precision,
		})
	}
	return points, nil
}

// encodeValue writes one delta: left-shift by one, invert if negative, then
// emit 5-bit chunks low-to-high with bit 6 as the continuation flag.
func encodeValue(b *strings.Builder, v int) {
	v <<= 1
	if v < 0 {
		v = ^v
	}
	for v >= 0x20 {
		b.WriteByte(byte((0x20|(v&0x1f))+63))
		v >>= 5
	}
	b.WriteByte(byte(v + 63))
}

// decodeValue reads one delta and returns it with the number of bytes consumed.
func decodeValue(s string) (int, int, error) {
	result, shift := 0, 0
	for i := 0; i < len(s); i++ {
		c := int(s[i]) - 63
		if c < 0 {
			return 0, 0, fmt.Errorf("invalid character %q", s[i])
		}
		result |= (c & 0x1f) << shift
		if c < 0x20 {
			if result&1 != 0 {
				result = ^result
			}
			return result >> 1, i + 1, nil
		}
		shift += 5
	}
	return 0, 0, fmt.Errorf("truncated value")
}
