package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/ticket_inventory/internal/core/domain"
)

func receive(t *testing.T, ch <-chan domain.InventoryEvent) domain.InventoryEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.InventoryEvent{}
	}
}

func TestHub_FansOutToAllSubscribers(t *testing.T) {
	hub := NewHub()
	eventID := uuid.New()

	ch1, cancel1 := hub.Subscribe(uuid.Nil)
	defer cancel1()
	ch2, cancel2 := hub.Subscribe(uuid.Nil)
	defer cancel2()

	ev := domain.InventoryEvent{Type: domain.EventInventoryUpdated, EventID: eventID, AvailableQuantity: 42}
	require.NoError(t, hub.Publish(context.Background(), ev))

	assert.Equal(t, ev, receive(t, ch1))
	assert.Equal(t, ev, receive(t, ch2))
}

func TestHub_ScopedSubscriberFiltersOtherEvents(t *testing.T) {
	hub := NewHub()
	mine := uuid.New()
	other := uuid.New()

	ch, cancel := hub.Subscribe(mine)
	defer cancel()

	require.NoError(t, hub.Publish(context.Background(), domain.InventoryEvent{Type: domain.EventHoldCreated, EventID: other}))
	require.NoError(t, hub.Publish(context.Background(), domain.InventoryEvent{Type: domain.EventHoldCreated, EventID: mine}))

	got := receive(t, ch)
	assert.Equal(t, mine, got.EventID)

	select {
	case ev := <-ch:
		t.Fatalf("received event for another event id: %+v", ev)
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(uuid.Nil)
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// A second cancel is harmless.
	cancel()

	require.NoError(t, hub.Publish(context.Background(), domain.InventoryEvent{Type: domain.EventInventoryUpdated}))
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe(uuid.Nil)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer+10; i++ {
			_ = hub.Publish(context.Background(), domain.InventoryEvent{Type: domain.EventInventoryUpdated, Quantity: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Len(t, ch, subscriberBuffer)
}
