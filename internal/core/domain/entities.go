package domain

// TravelMode selects the routing profile for a directions request.
type TravelMode string

const (
	ModeDriving   TravelMode = "driving"
	ModeWalking   TravelMode = "walking"
	ModeBicycling TravelMode = "bicycling"
	ModeTransit   TravelMode = "transit"
)

// ParseTravelMode returns the mode for a query value, defaulting to driving
// for the empty string. Unknown values are rejected.
func ParseTravelMode(s string) (TravelMode, bool) {
	switch TravelMode(s) {
	case "":
		return ModeDriving, true
	case ModeDriving, ModeWalking, ModeBicycling, ModeTransit:
		return TravelMode(s), true
	}
	return "", false
}

// Route is the canonical normalized route, built fresh per request from a
// provider response and discarded after the response is written.
type Route struct {
	DistanceText    string `json:"distance_text"`
	DurationText    string `json:"duration_text"`
	EncodedPolyline string `json:"encoded_polyline"`
	Legs            []Leg  `json:"legs"`
	// ModeFallback is set when the requested travel mode was not supported
	// upstream and the route was computed with the driving profile instead.
	ModeFallback bool `json:"mode_fallback,omitempty"`
}

// Leg is one segment of a route between two waypoints.
type Leg struct {
	DistanceText string `json:"distance_text"`
	DurationText string `json:"duration_text"`
	Steps        []Step `json:"steps"`
}

// Step is a single maneuver. Instruction is always plain text; HTML-formatted
// upstream instructions are stripped during normalization.
type Step struct {
	Instruction   string   `json:"instruction"`
	DistanceText  string   `json:"distance_text"`
	DurationText  string   `json:"duration_text"`
	StartLocation GeoPoint `json:"start_location"`
	EndLocation   GeoPoint `json:"end_location"`
}

// Place is the canonical place shape exposed regardless of upstream provider.
// Built per request; never cached across requests.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Location         GeoPoint `json:"location"`
	OpeningHours     *string  `json:"opening_hours"`
	Rating           *float64 `json:"rating"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
}

// PlaceSuggestion is a single autocomplete prediction.
type PlaceSuggestion struct {
	PlaceID     string   `json:"place_id"`
	Description string   `json:"description"`
	Types       []string `json:"types"`
}

// LiveLocation is a user's last-known position. Keyed by user ID, so a
// reconnect overwrites rather than duplicates.
type LiveLocation struct {
	UserID       string  `json:"userId"`
	UserName     string  `json:"userName"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Timestamp    int64   `json:"timestamp"` // unix milliseconds
	ConnectionID string  `json:"-"`
}

// IncidentCategory classifies a simulated traffic incident.
type IncidentCategory string

const (
	IncidentAccident     IncidentCategory = "accident"
	IncidentConstruction IncidentCategory = "construction"
	IncidentCongestion   IncidentCategory = "congestion"
)

// TrafficIncident is an ephemeral incident generated on demand, never stored.
type TrafficIncident struct {
	ID          string           `json:"id"`
	Category    IncidentCategory `json:"type"`
	Severity    int              `json:"severity"` // 1-3
	Location    GeoPoint         `json:"location"`
	Description string           `json:"description"`
	Timestamp   int64            `json:"timestamp"`
}

// PresenceUser is the public view of an identified connection.
type PresenceUser struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Online   bool   `json:"online"`
}
