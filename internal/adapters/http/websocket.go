package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/zulunav/navproxy/internal/core/domain"
	"github.com/zulunav/navproxy/internal/core/usecases"
	"github.com/zulunav/navproxy/internal/pkg/metrics"
)

// clientEnvelope is the client→server frame: an event name plus an opaque
// payload decoded per event.
type clientEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// serverEnvelope is the server→client frame.
type serverEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Per-event payloads. Extra fields sent by older clients (userId on a
// location update, say) are ignored; the session is authoritative.
type joinPayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type locationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchPayload struct {
	Query string `json:"query"`
}

type routePayload struct {
	Route json.RawMessage `json:"route"`
}

type emergencyPayload struct {
	Location domain.GeoPoint `json:"location"`
	Type     string          `json:"type"`
}

type trafficPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// wsRecipient adapts a websocket connection to the hub's Recipient. Writes
// are serialized under the mutex, which is shared with the keep-alive pings.
type wsRecipient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (r *wsRecipient) Send(event string, data any) error {
	payload, err := json.Marshal(serverEnvelope{Event: event, Data: data})
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.WriteMessage(websocket.TextMessage, payload)
}

func (r *wsRecipient) ping() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.WriteMessage(websocket.PingMessage, nil)
}

// PresenceHandler returns the websocket handler for the presence channel.
// Each connection gets an opaque uuid and lives in the hub until the read
// loop ends; malformed events are dropped with a warning, never fatal.
func PresenceHandler(hub *usecases.PresenceHub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		connID := uuid.NewString()
		r := &wsRecipient{conn: c}

		hub.Connect(connID, r)
		defer hub.Disconnect(connID)

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := r.ping(); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var env clientEnvelope
			if err := json.Unmarshal(msg, &env); err != nil {
				slog.Warn("dropping malformed frame", "conn_id", connID, "error", err)
				metrics.MalformedEvents.Inc()
				continue
			}

			dispatch(hub, connID, &env)
		}
	}
}

// dispatch routes one client event to the hub. Unknown event names and bad
// payloads are logged and dropped.
func dispatch(hub *usecases.PresenceHub, connID string, env *clientEnvelope) {
	switch env.Event {
	case "join":
		var p joinPayload
		if !decode(connID, env, &p) {
			return
		}
		if p.UserID == "" {
			drop(connID, env.Event, "empty userId")
			return
		}
		hub.Join(connID, p.UserID, p.UserName)

	case "locationUpdate":
		var p locationPayload
		if !decode(connID, env, &p) {
			return
		}
		if !(domain.GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude}).Valid() {
			drop(connID, env.Event, "coordinates out of range")
			return
		}
		hub.UpdateLocation(connID, p.Latitude, p.Longitude)

	case "searchQuery":
		var p searchPayload
		if !decode(connID, env, &p) {
			return
		}
		hub.LogSearch(connID, p.Query)

	case "shareRoute":
		var p routePayload
		if !decode(connID, env, &p) {
			return
		}
		hub.ShareRoute(connID, p.Route)

	case "emergency":
		var p emergencyPayload
		if !decode(connID, env, &p) {
			return
		}
		hub.Emergency(connID, p.Location, p.Type)

	case "requestTraffic":
		var p trafficPayload
		if !decode(connID, env, &p) {
			return
		}
		hub.RequestTraffic(connID, domain.GeoPoint{Latitude: p.Lat, Longitude: p.Lng})

	default:
		drop(connID, env.Event, "unknown event")
	}
}

func decode(connID string, env *clientEnvelope, out any) bool {
	if err := json.Unmarshal(env.Data, out); err != nil {
		drop(connID, env.Event, err.Error())
		return false
	}
	return true
}

func drop(connID, event, reason string) {
	slog.Warn("dropping event", "conn_id", connID, "event", event, "reason", reason)
	metrics.MalformedEvents.Inc()
}
