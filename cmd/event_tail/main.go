package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rag-api-explorer-be/internal/config"
	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/events"
	pktNats "rag-api-explorer-be/pkg/nats"

	"github.com/fatih/color"
)

// Prints conversation events from the EVENTS stream as they arrive.
func main() {
	subject := flag.String("subject", pktNats.SubjectPrefix+">", "subject filter, e.g. events.API_MODE_ENTERED")
	durable := flag.String("durable", "", "durable consumer name (empty for ephemeral)")
	flag.Parse()

	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL, logger.NewNopLogger())
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = sub.Subscribe(ctx, *subject, *durable, func(_ context.Context, ev events.Event) error {
		data, _ := json.Marshal(ev.Payload())
		printer(ev.EventType())("%s %-20s %s", ev.Timestamp().Format("15:04:05"), ev.EventType(), data)
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	color.Cyan("Listening on %s (Ctrl+C to stop)", *subject)
	<-ctx.Done()
}

func printer(eventType string) func(format string, a ...interface{}) {
	switch eventType {
	case events.TypeAPIModeEntered:
		return color.Green
	case events.TypeAPIModeExited:
		return color.Yellow
	case events.TypeAPIEndpointCalled:
		return color.Blue
	default:
		return color.White
	}
}
