package domain

import (
	"time"

	"github.com/google/uuid"
)

type HoldStatus string

const (
	HoldActive    HoldStatus = "ACTIVE"
	HoldReleased  HoldStatus = "RELEASED"
	HoldExpired   HoldStatus = "EXPIRED"
	HoldConverted HoldStatus = "CONVERTED"
)

type HoldType string

const (
	HoldCheckout      HoldType = "checkout"
	HoldAdminBlock    HoldType = "admin-block"
	HoldWaitlistOffer HoldType = "waitlist-offer"
)

func (t HoldType) Valid() bool {
	switch t {
	case HoldCheckout, HoldAdminBlock, HoldWaitlistOffer:
		return true
	}
	return false
}

// Hold is a time-limited reservation of Quantity units of one ticket type.
// Quantity never changes in place; callers release and re-create instead.
type Hold struct {
	ID           uuid.UUID  `json:"id"`
	EventID      uuid.UUID  `json:"event_id"`
	TicketTypeID uuid.UUID  `json:"ticket_type_id"`
	SessionID    string     `json:"session_id"`
	Quantity     int        `json:"quantity"`
	Type         HoldType   `json:"hold_type"`
	Status       HoldStatus `json:"status"`
	RequestID    string     `json:"request_id,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	ReleasedAt   *time.Time `json:"released_at,omitempty"`
}

func (h *Hold) IsActive() bool {
	return h.Status == HoldActive
}

func (h *Hold) ExpiredAt(now time.Time) bool {
	return h.Status == HoldActive && !h.ExpiresAt.After(now)
}
