// presencetap tails the NATS presence mirror and prints one JSON line per
// event. Ops tool for watching live activity without attaching a websocket
// client to the proxy.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/zulunav/navproxy/internal/adapters/nats"
	"github.com/zulunav/navproxy/internal/pkg/config"
	"github.com/zulunav/navproxy/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("navproxy-presencetap")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, "text")

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	enc := json.NewEncoder(os.Stdout)
	err = sub.SubscribePresence(func(subject string, data []byte) {
		var payload any
		if err := json.Unmarshal(data, &payload); err != nil {
			payload = string(data)
		}
		_ = enc.Encode(map[string]any{
			"at":      time.Now().UTC().Format(time.RFC3339),
			"subject": subject,
			"payload": payload,
		})
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	fmt.Fprintln(os.Stderr, "tailing nav.presence.> (ctrl-c to stop)")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
