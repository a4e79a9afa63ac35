package ports

import (
	"context"

	"github.com/zulunav/navproxy/internal/core/domain"
)

// EventPublisher mirrors presence events onto a message broker so that other
// backends can observe live presence without holding a socket connection.
// Implementations must be best-effort: a publish failure never blocks or
// aborts the in-process broadcast.
type EventPublisher interface {
	PublishLocation(ctx context.Context, loc *domain.LiveLocation) error
	PublishEmergency(ctx context.Context, userID string, location domain.GeoPoint, kind string) error
	PublishUserCount(ctx context.Context, count int) error
}
