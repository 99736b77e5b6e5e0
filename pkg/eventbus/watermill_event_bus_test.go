package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentweave/agentweave/pkg/channels/gochannel"
	"github.com/agentweave/agentweave/pkg/eventbus"
	"github.com/agentweave/agentweave/pkg/events"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return eventbus.NewWatermillEventBus(pub, sub)
}

func TestGenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestPublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.NodeFinished, 1)

	err := bus.Handle(events.NodeFinishedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.NodeFinished)

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	err = bus.Publish(ctx, "graph-1", events.NodeFinished{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.NodeFinishedEvent,
			Timestamp: time.Now().UTC(),
			GraphID:   "graph-1",
		},
		NodeID: "double",
		Status: "succeeded",
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "double", event.NodeID)
		assert.Equal(t, "graph-1", event.GraphID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribe_UnhandledEventTypeIsAcked(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.ExecutionFinished, 1)

	err := bus.Handle(events.ExecutionFinishedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.ExecutionFinished)

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for execution.started; it must not block the
	// stream for later events.
	require.NoError(t, bus.Publish(ctx, "graph-1", events.ExecutionStarted{
		BaseEvent: events.BaseEvent{Type: events.ExecutionStartedEvent, GraphID: "graph-1"},
	}))
	require.NoError(t, bus.Publish(ctx, "graph-1", events.ExecutionFinished{
		BaseEvent: events.BaseEvent{Type: events.ExecutionFinishedEvent, GraphID: "graph-1"},
		Status:    "succeeded",
	}))

	select {
	case event := <-received:
		assert.Equal(t, "succeeded", event.Status)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}
