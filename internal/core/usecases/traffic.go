package usecases

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/zulunav/navproxy/internal/core/domain"
)

var incidentCategories = []domain.IncidentCategory{
	domain.IncidentAccident,
	domain.IncidentConstruction,
	domain.IncidentCongestion,
}

// simulateTraffic generates 1-5 random incidents scattered within ±0.05
// degrees of the requested center. Incidents are ephemeral: built, sent,
// forgotten.
func simulateTraffic(center domain.GeoPoint) []domain.TrafficIncident {
	now := time.Now().UnixMilli()
	n := rand.Intn(5) + 1

	incidents := make([]domain.TrafficIncident, 0, n)
	for i := 0; i < n; i++ {
		incidents = append(incidents, domain.TrafficIncident{
			ID:       fmt.Sprintf("traffic_%d_%d", now, i),
			Category: incidentCategories[rand.Intn(len(incidentCategories))],
			Severity: rand.Intn(3) + 1,
			Location: domain.GeoPoint{
				Latitude:  center.Latitude + (rand.Float64()-0.5)*0.1,
				Longitude: center.Longitude + (rand.Float64()-0.5)*0.1,
			},
			Description: "Live traffic update",
			Timestamp:   now,
		})
	}
	return incidents
}
