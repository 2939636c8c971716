package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRoundTrip(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, NewEvent(TypeAPIModeEntered, map[string]interface{}{
		"user_id": "u1",
		"api_url": "https://api.github.com/",
	})))

	select {
	case msg := <-msgs:
		ev, err := Decode(msg)
		require.NoError(t, err)
		msg.Ack()

		assert.Equal(t, TypeAPIModeEntered, ev.EventType())
		assert.Equal(t, "u1", ev.Payload()["user_id"])
		assert.Equal(t, TypeAPIModeEntered, msg.Metadata.Get("type"))
		assert.False(t, ev.Timestamp().IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
