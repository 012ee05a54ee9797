package notifier

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
)

const subscriberBuffer = 16

// Hub is the in-process notifier. Delivery is at most once: a subscriber
// whose buffer is full misses the event and is expected to reconcile through
// the availability query.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]*subscription
	nextID int64
}

var _ ports.Notifier = (*Hub)(nil)

type subscription struct {
	eventID uuid.UUID
	ch      chan domain.InventoryEvent
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]*subscription)}
}

func (h *Hub) Publish(ctx context.Context, ev domain.InventoryEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.eventID != uuid.Nil && sub.eventID != ev.EventID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			// Slow subscriber; drop rather than block the mutation path.
		}
	}

	return nil
}

func (h *Hub) Subscribe(eventID uuid.UUID) (<-chan domain.InventoryEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	sub := &subscription{
		eventID: eventID,
		ch:      make(chan domain.InventoryEvent, subscriberBuffer),
	}
	h.subs[id] = sub

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; !ok {
			return
		}
		delete(h.subs, id)
		close(sub.ch)
	}

	return sub.ch, cancel
}
