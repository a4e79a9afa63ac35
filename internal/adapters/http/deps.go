package http

import (
	natsadapter "github.com/zulunav/navproxy/internal/adapters/nats"
	"github.com/zulunav/navproxy/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Directions *usecases.DirectionsService
	Places     *usecases.PlacesService
	Hub        *usecases.PresenceHub
	NATS       *natsadapter.Publisher // optional presence mirror, may be nil
	ServerName string
}
