package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/zulunav/navproxy/internal/core/domain"
)

// Publisher implements ports.EventPublisher, mirroring presence events onto
// core NATS subjects. Presence is ephemeral by nature, so there is no
// JetStream persistence here: a subscriber that missed an update just waits
// for the next one.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS with indefinite reconnects.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

// PublishLocation mirrors a live location onto nav.presence.location.<userID>.
func (p *Publisher) PublishLocation(ctx context.Context, loc *domain.LiveLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return p.conn.Publish("nav.presence.location."+loc.UserID, data)
}

// PublishEmergency mirrors an emergency alert onto nav.presence.emergency.
func (p *Publisher) PublishEmergency(ctx context.Context, userID string, location domain.GeoPoint, kind string) error {
	data, err := json.Marshal(map[string]any{
		"userId":    userID,
		"location":  location,
		"type":      kind,
		"timestamp": time.Now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return p.conn.Publish("nav.presence.emergency", data)
}

// PublishUserCount mirrors the identified-user count onto nav.presence.count.
func (p *Publisher) PublishUserCount(ctx context.Context, count int) error {
	return p.conn.Publish("nav.presence.count", []byte(strconv.Itoa(count)))
}

// IsConnected reports the connection state for readiness checks.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
