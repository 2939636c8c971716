package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const Topic = "conversation.events"

// Publisher is what turn handlers use to emit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Bus is the in-process event bus. Publishing never waits for subscribers.
type Bus struct {
	pubSub *gochannel.GoChannel
}

func NewBus(log watermill.LoggerAdapter) *Bus {
	if log == nil {
		log = watermill.NopLogger{}
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, log),
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(BaseEvent{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", event.EventType())
	return b.pubSub.Publish(Topic, msg)
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, Topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// Decode restores the event carried by msg.
func Decode(msg *message.Message) (BaseEvent, error) {
	var ev BaseEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return BaseEvent{}, err
	}
	return ev, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
