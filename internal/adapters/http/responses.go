package http

import "github.com/zulunav/navproxy/internal/core/domain"

// Wire DTOs matching the Google-Maps-style envelope the mobile and web
// clients already consume. Canonical domain types are mapped here and only
// here; nothing below this file knows about the wire shape.

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
	statusNotFound    = "NOT_FOUND"
)

type textValue struct {
	Text string `json:"text"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type overviewPolyline struct {
	Points string `json:"points"`
}

type stepDTO struct {
	// Key kept for client compatibility; the value is always plain text.
	HTMLInstructions string    `json:"html_instructions"`
	Distance         textValue `json:"distance"`
	Duration         textValue `json:"duration"`
	StartLocation    latLng    `json:"start_location"`
	EndLocation      latLng    `json:"end_location"`
}

type legDTO struct {
	Distance textValue `json:"distance"`
	Duration textValue `json:"duration"`
	Steps    []stepDTO `json:"steps"`
}

type routeDTO struct {
	OverviewPolyline overviewPolyline `json:"overview_polyline"`
	Legs             []legDTO         `json:"legs"`
}

type directionsResponse struct {
	Status  string     `json:"status"`
	Routes  []routeDTO `json:"routes,omitempty"`
	Warning string     `json:"warning,omitempty"`
}

type predictionDTO struct {
	PlaceID     string   `json:"place_id"`
	Description string   `json:"description"`
	Types       []string `json:"types"`
}

type geometryDTO struct {
	Location latLng `json:"location"`
}

type placeDTO struct {
	PlaceID          string      `json:"place_id"`
	Name             string      `json:"name"`
	FormattedAddress string      `json:"formatted_address,omitempty"`
	Vicinity         string      `json:"vicinity,omitempty"`
	Geometry         geometryDTO `json:"geometry"`
	OpeningHours     *string     `json:"opening_hours"`
	Rating           *float64    `json:"rating"`
	PriceLevel       *int        `json:"price_level"`
	Types            []string    `json:"types,omitempty"`
}

func toLatLng(p domain.GeoPoint) latLng {
	return latLng{Lat: p.Latitude, Lng: p.Longitude}
}

func toRouteDTO(r *domain.Route) routeDTO {
	dto := routeDTO{
		OverviewPolyline: overviewPolyline{Points: r.EncodedPolyline},
	}
	for _, leg := range r.Legs {
		legOut := legDTO{
			Distance: textValue{Text: leg.DistanceText},
			Duration: textValue{Text: leg.DurationText},
		}
		for _, s := range leg.Steps {
			legOut.Steps = append(legOut.Steps, stepDTO{
				HTMLInstructions: s.Instruction,
				Distance:         textValue{Text: s.DistanceText},
				Duration:         textValue{Text: s.DurationText},
				StartLocation:    toLatLng(s.StartLocation),
				EndLocation:      toLatLng(s.EndLocation),
			})
		}
		dto.Legs = append(dto.Legs, legOut)
	}
	return dto
}

// toPlaceDTO maps a canonical place. Nearby results carry the address in
// "vicinity", everything else in "formatted_address" (client contract).
func toPlaceDTO(p *domain.Place, nearby bool) placeDTO {
	dto := placeDTO{
		PlaceID:      p.PlaceID,
		Name:         p.Name,
		Geometry:     geometryDTO{Location: toLatLng(p.Location)},
		OpeningHours: p.OpeningHours,
		Rating:       p.Rating,
		PriceLevel:   p.PriceLevel,
		Types:        p.Types,
	}
	if nearby {
		dto.Vicinity = p.FormattedAddress
	} else {
		dto.FormattedAddress = p.FormattedAddress
	}
	return dto
}

func toPlaceDTOs(places []domain.Place, nearby bool) []placeDTO {
	out := make([]placeDTO, 0, len(places))
	for i := range places {
		out = append(out, toPlaceDTO(&places[i], nearby))
	}
	return out
}
