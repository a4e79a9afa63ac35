package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zulunav/navproxy/internal/core/domain"
)

// parseLatLng parses a "lat,lng" query value into a validated GeoPoint.
func parseLatLng(s string) (domain.GeoPoint, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("expected \"lat,lng\"")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("bad latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("bad longitude %q", parts[1])
	}
	p := domain.GeoPoint{Latitude: lat, Longitude: lng}
	if !p.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("coordinates out of range")
	}
	return p, nil
}

// DirectionsHandler proxies a route request to the directions provider and
// returns the Google-style envelope.
func DirectionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		originStr := c.Query("origin")
		destStr := c.Query("destination")
		if originStr == "" || destStr == "" {
			return errBadRequest(c, "origin and destination required")
		}

		origin, err := parseLatLng(originStr)
		if err != nil {
			return errBadRequest(c, "invalid origin: "+err.Error())
		}
		destination, err := parseLatLng(destStr)
		if err != nil {
			return errBadRequest(c, "invalid destination: "+err.Error())
		}

		mode, ok := domain.ParseTravelMode(c.Query("mode"))
		if !ok {
			return errBadRequest(c, "invalid mode: "+c.Query("mode"))
		}

		route, err := deps.Directions.GetRoute(c.UserContext(), origin, destination, mode)
		switch {
		case errors.Is(err, domain.ErrNoRoute):
			return c.JSON(directionsResponse{Status: statusZeroResults})
		case err != nil:
			return errProxyFailed(c, "directions", err)
		}

		resp := directionsResponse{
			Status: statusOK,
			Routes: []routeDTO{toRouteDTO(route)},
		}
		if route.ModeFallback {
			resp.Warning = "transit mode unavailable, showing driving route"
		}
		return c.JSON(resp)
	}
}

// AutocompleteHandler returns place suggestions for a partial input.
func AutocompleteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := c.Query("input")
		if input == "" {
			return errBadRequest(c, "input required")
		}

		suggestions, err := deps.Places.Autocomplete(c.UserContext(), input)
		if err != nil {
			return errProxyFailed(c, "autocomplete", err)
		}

		predictions := make([]predictionDTO, 0, len(suggestions))
		for _, s := range suggestions {
			predictions = append(predictions, predictionDTO{
				PlaceID:     s.PlaceID,
				Description: s.Description,
				Types:       s.Types,
			})
		}
		return c.JSON(fiber.Map{"status": statusOK, "predictions": predictions})
	}
}

// DetailsHandler resolves one place by composite id. A miss is a 200 with
// NOT_FOUND status, not an HTTP error.
func DetailsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		placeID := c.Query("place_id")
		if placeID == "" {
			return errBadRequest(c, "place_id required")
		}

		place, err := deps.Places.Details(c.UserContext(), placeID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(fiber.Map{"status": statusNotFound})
		case err != nil:
			return errProxyFailed(c, "place details", err)
		}

		return c.JSON(fiber.Map{"status": statusOK, "result": toPlaceDTO(place, false)})
	}
}

// NearbyHandler searches for places of a category around a point.
func NearbyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		location := c.Query("location")
		if location == "" {
			return errBadRequest(c, "location required")
		}

		center, err := parseLatLng(location)
		if err != nil {
			return errBadRequest(c, "invalid location: "+err.Error())
		}

		radius := c.QueryFloat("radius", 1500)
		category := c.Query("type")

		places, err := deps.Places.Nearby(c.UserContext(), center, category, radius)
		if err != nil {
			return errProxyFailed(c, "nearby search", err)
		}

		return c.JSON(fiber.Map{"status": statusOK, "results": toPlaceDTOs(places, true)})
	}
}

// TextSearchHandler runs a free-text global place search.
func TextSearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("query")
		if query == "" {
			return errBadRequest(c, "query required")
		}

		places, err := deps.Places.TextSearch(c.UserContext(), query)
		if err != nil {
			return errProxyFailed(c, "text search", err)
		}

		return c.JSON(fiber.Map{"status": statusOK, "results": toPlaceDTOs(places, false)})
	}
}

// RealtimeUsersHandler lists currently identified presence users.
func RealtimeUsersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users := deps.Hub.Users()
		return c.JSON(fiber.Map{"users": users, "count": len(users)})
	}
}

// RealtimeLocationsHandler snapshots all live locations.
func RealtimeLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"locations": deps.Hub.Locations()})
	}
}
