package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, events.Event) error {
	p.calls++
	return errors.New("nats: no responders available")
}

func TestRelayForwardsBusEvents(t *testing.T) {
	bus := events.NewBus(nil)
	defer bus.Close()

	sink := &recordingPublisher{}
	relay := NewEventRelayService(bus, sink, logger.NewNopLogger())
	require.NoError(t, relay.Start(context.Background()))
	defer relay.Stop()

	require.NoError(t, bus.Publish(context.Background(), events.NewEvent(events.TypeAPIModeEntered, map[string]interface{}{
		"user_id": "u1",
	})))
	require.NoError(t, bus.Publish(context.Background(), events.NewEvent(events.TypeRAGAnswered, nil)))

	assert.Eventually(t, func() bool {
		return len(sink.types()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{events.TypeAPIModeEntered, events.TypeRAGAnswered}, sink.types())

	sink.mu.Lock()
	assert.Equal(t, "u1", sink.events[0].Payload()["user_id"])
	sink.mu.Unlock()
}

func TestRelayKeepsGoingWhenSinkFails(t *testing.T) {
	bus := events.NewBus(nil)
	defer bus.Close()

	sink := &failingPublisher{}
	relay := NewEventRelayService(bus, sink, logger.NewNopLogger())
	require.NoError(t, relay.Start(context.Background()))

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), events.NewEvent(events.TypeRAGAnswered, nil)))
	}

	time.Sleep(50 * time.Millisecond)
	relay.Stop()
	assert.Equal(t, 3, sink.calls)
}

func TestRelayStartStopIdempotent(t *testing.T) {
	bus := events.NewBus(nil)
	defer bus.Close()

	relay := NewEventRelayService(bus, nil, logger.NewNopLogger())
	require.NoError(t, relay.Start(context.Background()))
	require.NoError(t, relay.Start(context.Background()))
	relay.Stop()
	relay.Stop()
}
