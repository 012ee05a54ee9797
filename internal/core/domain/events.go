package domain

import (
	"time"

	"github.com/google/uuid"
)

type InventoryEventType string

const (
	EventInventoryUpdated  InventoryEventType = "inventory-updated"
	EventHoldCreated       InventoryEventType = "hold-created"
	EventHoldReleased      InventoryEventType = "hold-released"
	EventHoldExpired       InventoryEventType = "hold-expired"
	EventPurchaseCompleted InventoryEventType = "purchase-completed"
	EventAlertRaised       InventoryEventType = "alert-raised"
)

// InventoryEvent is pushed to observers after a successful mutation. Delivery
// is at most once; consumers that need certainty reconcile through the
// availability query instead of trusting the stream.
type InventoryEvent struct {
	Type              InventoryEventType `json:"type"`
	EventID           uuid.UUID          `json:"event_id"`
	TicketTypeID      uuid.UUID          `json:"ticket_type_id"`
	HoldID            uuid.UUID          `json:"hold_id,omitempty"`
	Quantity          int                `json:"quantity,omitempty"`
	AvailableQuantity int                `json:"available_quantity"`
	Level             AvailabilityLevel  `json:"level,omitempty"`
	Message           string             `json:"message,omitempty"`
	OccurredAt        time.Time          `json:"occurred_at"`
}
