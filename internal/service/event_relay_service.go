package service

import (
	"context"
	"sync"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventSource is the in-process bus the relay drains.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
}

type IEventRelayService interface {
	Start(ctx context.Context) error
	Stop()
}

// eventRelayService forwards conversation events from the in-process bus to
// an external sink (NATS JetStream in production). With no sink the events
// are only logged.
type eventRelayService struct {
	source EventSource
	sink   events.Publisher
	logger logger.ILogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewEventRelayService(source EventSource, sink events.Publisher, log logger.ILogger) IEventRelayService {
	return &eventRelayService{
		source: source,
		sink:   sink,
		logger: log,
	}
}

func (rs *eventRelayService) Start(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	messages, err := rs.source.Subscribe(ctx)
	if err != nil {
		cancel()
		return err
	}

	rs.cancel = cancel
	rs.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		for msg := range messages {
			rs.processMessage(ctx, msg)
		}
	}(rs.done)

	rs.logger.Info("RELAY", "Event relay started", map[string]interface{}{
		"topic":    events.Topic,
		"has_sink": rs.sink != nil,
	})
	return nil
}

func (rs *eventRelayService) Stop() {
	rs.mu.Lock()
	cancel, done := rs.cancel, rs.done
	rs.cancel, rs.done = nil, nil
	rs.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	rs.logger.Info("RELAY", "Event relay stopped", nil)
}

func (rs *eventRelayService) processMessage(ctx context.Context, msg *message.Message) {
	// Events are best effort: every message is acked, even when forwarding fails.
	defer msg.Ack()

	ev, err := events.Decode(msg)
	if err != nil {
		rs.logger.Error("RELAY", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	rs.logger.Debug("RELAY", "Event received", map[string]interface{}{
		"type": ev.Type,
		"data": ev.Data,
	})

	if rs.sink == nil {
		return
	}
	if err := rs.sink.Publish(ctx, ev); err != nil {
		rs.logger.Error("RELAY", "Failed to forward event", map[string]interface{}{
			"type":  ev.Type,
			"error": err.Error(),
		})
	}
}
