package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
)

// Notifier fans allocation events out to observers. Delivery is at most once
// per subscriber; the event stream is a latency optimization, not the system
// of record.
type Notifier interface {
	Publish(ctx context.Context, ev domain.InventoryEvent) error

	// Subscribe registers an observer for one event's stream, or for all
	// events when eventID is uuid.Nil. The returned func cancels the
	// subscription and closes the channel.
	Subscribe(eventID uuid.UUID) (<-chan domain.InventoryEvent, func())
}
