package natsadapter

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subscriber consumes the presence mirror subjects. Core NATS only, same as
// the publisher: a consumer that missed an update waits for the next one.
type Subscriber struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS with indefinite reconnects.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Subscriber{conn: conn}, nil
}

// SubscribePresence delivers every mirrored presence event (locations,
// emergencies, user counts) to handler with its subject.
func (s *Subscriber) SubscribePresence(handler func(subject string, data []byte)) error {
	sub, err := s.conn.Subscribe("nav.presence.>", func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeEmergencies delivers only emergency alerts to handler.
func (s *Subscriber) SubscribeEmergencies(handler func(data []byte)) error {
	sub, err := s.conn.Subscribe("nav.presence.emergency", func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
