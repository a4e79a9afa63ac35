package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/core/ports"
	"github.com/zulunav/navproxy/internal/pkg/metrics"
)

// Server-to-client event names.
const (
	EventUserCount          = "userCount"
	EventUserLocationUpdate = "userLocationUpdate"
	EventUserDisconnected   = "userDisconnected"
	EventRouteShared        = "routeShared"
	EventEmergencyAlert     = "emergencyAlert"
	EventTrafficUpdate      = "trafficUpdate"
)

// Recipient delivers server-to-client events for a single connection.
// Implementations must be safe for concurrent use; a failed send only
// affects its own connection.
type Recipient interface {
	Send(event string, data any) error
}

type session struct {
	connID     string
	userID     string
	userName   string
	createdAt  time.Time
	recipient  Recipient
	identified bool
}

// PresenceHub is the process-wide registry of live connections and their
// last-known locations. It is constructed once and handed to each connection
// handler; multiple isolated hubs can coexist in tests.
//
// All map mutation happens under the mutex and never spans a network call,
// so a disconnect is fully applied before any later event for the same user
// is observed.
type PresenceHub struct {
	mu        sync.RWMutex
	conns     map[string]*session
	locations map[string]domain.LiveLocation

	events ports.EventPublisher // optional mirror, may be nil
}

// NewPresenceHub creates an empty hub. events may be nil; mirroring is then
// disabled.
func NewPresenceHub(events ports.EventPublisher) *PresenceHub {
	return &PresenceHub{
		conns:     make(map[string]*session),
		locations: make(map[string]domain.LiveLocation),
		events:    events,
	}
}

// Connect registers a new anonymous connection. At most one session exists
// per connection id; a duplicate id replaces the stale entry.
func (h *PresenceHub) Connect(connID string, r Recipient) {
	h.mu.Lock()
	h.conns[connID] = &session{connID: connID, createdAt: time.Now(), recipient: r}
	total := len(h.conns)
	h.mu.Unlock()

	metrics.ActiveConnections.Set(float64(total))
	slog.Info("connection opened", "conn_id", connID, "connections", total)
}

// Join identifies a connection. The updated user count is broadcast to every
// connection, joiner included.
func (h *PresenceHub) Join(connID, userID, userName string) {
	h.mu.Lock()
	s, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		slog.Warn("join from unknown connection", "conn_id", connID)
		return
	}
	s.userID = userID
	s.userName = userName
	s.identified = true
	count := h.identifiedLocked()
	h.mu.Unlock()

	metrics.PresenceEvents.WithLabelValues("join").Inc()
	metrics.IdentifiedUsers.Set(float64(count))
	slog.Info("user joined", "user_id", userID, "user_name", userName, "conn_id", connID)

	h.broadcast(EventUserCount, count, "")
	if h.events != nil {
		_ = h.events.PublishUserCount(context.Background(), count)
	}
}

// UpdateLocation records a user's live position and fans it out to every
// other identified connection. The sender never receives its own echo.
// Events from connections that never joined are dropped with a warning.
func (h *PresenceHub) UpdateLocation(connID string, lat, lon float64) {
	h.mu.Lock()
	s, ok := h.conns[connID]
	if !ok || !s.identified {
		h.mu.Unlock()
		slog.Warn("location update from unidentified connection", "conn_id", connID)
		metrics.MalformedEvents.Inc()
		return
	}

	loc := domain.LiveLocation{
		UserID:       s.userID,
		UserName:     s.userName,
		Latitude:     lat,
		Longitude:    lon,
		Timestamp:    time.Now().UnixMilli(),
		ConnectionID: connID,
	}
	// Keyed by user id: a reconnect overwrites rather than duplicates.
	h.locations[s.userID] = loc
	h.mu.Unlock()

	metrics.PresenceEvents.WithLabelValues("locationUpdate").Inc()

	h.broadcastIdentified(EventUserLocationUpdate, loc, connID)
	if h.events != nil {
		_ = h.events.PublishLocation(context.Background(), &loc)
	}
}

// ShareRoute relays an opaque route payload to all other connections.
func (h *PresenceHub) ShareRoute(connID string, route json.RawMessage) {
	s, ok := h.identifiedSession(connID)
	if !ok {
		slog.Warn("route share from unidentified connection", "conn_id", connID)
		metrics.MalformedEvents.Inc()
		return
	}

	metrics.PresenceEvents.WithLabelValues("shareRoute").Inc()

	h.broadcast(EventRouteShared, map[string]any{
		"route":     route,
		"userId":    s.userID,
		"userName":  s.userName,
		"timestamp": time.Now().UnixMilli(),
	}, connID)
}

// Emergency broadcasts an alert to ALL connections, sender included: the
// echo doubles as delivery acknowledgment for the person in trouble.
func (h *PresenceHub) Emergency(connID string, location domain.GeoPoint, kind string) {
	s, ok := h.identifiedSession(connID)
	if !ok {
		slog.Warn("emergency from unidentified connection", "conn_id", connID)
		metrics.MalformedEvents.Inc()
		return
	}

	metrics.PresenceEvents.WithLabelValues("emergency").Inc()
	slog.Warn("emergency alert",
		"user_id", s.userID, "user_name", s.userName,
		"latitude", location.Latitude, "longitude", location.Longitude, "kind", kind)

	h.broadcast(EventEmergencyAlert, map[string]any{
		"location":  location,
		"userId":    s.userID,
		"userName":  s.userName,
		"type":      kind,
		"timestamp": time.Now().UnixMilli(),
	}, "")

	if h.events != nil {
		_ = h.events.PublishEmergency(context.Background(), s.userID, location, kind)
	}
}

// RequestTraffic synthesizes incidents around the requested bounds center
// and replies to the requesting connection only.
func (h *PresenceHub) RequestTraffic(connID string, center domain.GeoPoint) {
	h.mu.RLock()
	s, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	metrics.PresenceEvents.WithLabelValues("requestTraffic").Inc()

	incidents := simulateTraffic(center)
	if err := s.recipient.Send(EventTrafficUpdate, incidents); err != nil {
		slog.Debug("traffic reply failed", "conn_id", connID, "error", err)
	}
}

// LogSearch records a collaborative search query. No broadcast contract.
func (h *PresenceHub) LogSearch(connID, query string) {
	s, _ := h.identifiedSession(connID)
	userName := ""
	if s != nil {
		userName = s.userName
	}
	metrics.PresenceEvents.WithLabelValues("searchQuery").Inc()
	slog.Info("search query", "conn_id", connID, "user_name", userName, "query", query)
}

// Disconnect removes the session and its live location, then notifies the
// remaining connections. Removal happens synchronously under the lock so a
// fast reconnect from the same user is never shadowed by stale state.
func (h *PresenceHub) Disconnect(connID string) {
	h.mu.Lock()
	s, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, connID)
	wasIdentified := s.identified
	if wasIdentified {
		delete(h.locations, s.userID)
	}
	total := len(h.conns)
	count := h.identifiedLocked()
	h.mu.Unlock()

	metrics.ActiveConnections.Set(float64(total))
	slog.Info("connection closed", "conn_id", connID, "connections", total)

	if !wasIdentified {
		return
	}

	metrics.IdentifiedUsers.Set(float64(count))
	slog.Info("user disconnected", "user_id", s.userID, "user_name", s.userName)

	h.broadcast(EventUserCount, count, "")
	h.broadcast(EventUserDisconnected, map[string]string{"userId": s.userID}, "")
	if h.events != nil {
		_ = h.events.PublishUserCount(context.Background(), count)
	}
}

// ActiveUsers returns the number of identified sessions.
func (h *PresenceHub) ActiveUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identifiedLocked()
}

// Users returns the public view of all identified sessions.
func (h *PresenceHub) Users() []domain.PresenceUser {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]domain.PresenceUser, 0, len(h.conns))
	for _, s := range h.conns {
		if s.identified {
			users = append(users, domain.PresenceUser{
				UserID:   s.userID,
				UserName: s.userName,
				Online:   true,
			})
		}
	}
	return users
}

// Locations returns a snapshot of all live locations.
func (h *PresenceHub) Locations() []domain.LiveLocation {
	h.mu.RLock()
	defer h.mu.RUnlock()

	locs := make([]domain.LiveLocation, 0, len(h.locations))
	for _, loc := range h.locations {
		locs = append(locs, loc)
	}
	return locs
}

// ---- internals ----

func (h *PresenceHub) identifiedLocked() int {
	n := 0
	for _, s := range h.conns {
		if s.identified {
			n++
		}
	}
	return n
}

func (h *PresenceHub) identifiedSession(connID string) (*session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.conns[connID]
	if !ok || !s.identified {
		return nil, false
	}
	return s, true
}

// broadcast fans an event out to every connection except exclude (exclude ""
// means everyone). Recipients are snapshotted under the read lock; sends run
// outside it so one slow client cannot stall the hub. Per-recipient failures
// are isolated and logged.
func (h *PresenceHub) broadcast(event string, data any, exclude string) {
	h.mu.RLock()
	recipients := make([]*session, 0, len(h.conns))
	for _, s := range h.conns {
		if s.connID != exclude {
			recipients = append(recipients, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range recipients {
		if err := s.recipient.Send(event, data); err != nil {
			slog.Debug("broadcast delivery failed", "event", event, "conn_id", s.connID, "error", err)
		}
	}
}

// broadcastIdentified is broadcast restricted to identified sessions.
func (h *PresenceHub) broadcastIdentified(event string, data any, exclude string) {
	h.mu.RLock()
	recipients := make([]*session, 0, len(h.conns))
	for _, s := range h.conns {
		if s.identified && s.connID != exclude {
			recipients = append(recipients, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range recipients {
		if err := s.recipient.Send(event, data); err != nil {
			slog.Debug("broadcast delivery failed", "event", event, "conn_id", s.connID, "error", err)
		}
	}
}
