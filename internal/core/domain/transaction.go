package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxnHoldCreate  TransactionType = "hold-create"
	TxnHoldRelease TransactionType = "hold-release"
	TxnHoldExpire  TransactionType = "hold-expire"
	TxnPurchase    TransactionType = "purchase"
)

// InventoryTransaction is one audit-trail entry, written in the same
// transaction as the mutation it records.
type InventoryTransaction struct {
	ID                uuid.UUID       `json:"id"`
	EventID           uuid.UUID       `json:"event_id"`
	TicketTypeID      uuid.UUID       `json:"ticket_type_id"`
	HoldID            uuid.UUID       `json:"hold_id"`
	Type              TransactionType `json:"type"`
	Quantity          int             `json:"quantity"`
	PreviousAvailable int             `json:"previous_available"`
	NewAvailable      int             `json:"new_available"`
	SessionID         string          `json:"session_id,omitempty"`
	Reason            string          `json:"reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
