package domain

import (
	"time"

	"github.com/google/uuid"
)

type AvailabilityLevel string

const (
	LevelAvailable     AvailabilityLevel = "available"
	LevelLowStock      AvailabilityLevel = "low-stock"
	LevelCriticalStock AvailabilityLevel = "critical-stock"
	LevelSoldOut       AvailabilityLevel = "sold-out"
	LevelComingSoon    AvailabilityLevel = "coming-soon"
)

// TicketTypeCapacity is the authoritative counter row for one ticket type of
// one event. Only the allocation engine mutates it, and every mutation keeps
// SoldQuantity + HeldQuantity <= TotalQuantity.
type TicketTypeCapacity struct {
	EventID       uuid.UUID
	TicketTypeID  uuid.UUID
	Name          string
	TotalQuantity int
	SoldQuantity  int
	HeldQuantity  int
	Archived      bool
	UpdatedAt     time.Time
}

func (c *TicketTypeCapacity) Available() int {
	return c.TotalQuantity - c.SoldQuantity - c.HeldQuantity
}

// AvailabilitySnapshot is derived from a capacity row on demand and never
// persisted or cached.
type AvailabilitySnapshot struct {
	EventID           uuid.UUID         `json:"event_id"`
	TicketTypeID      uuid.UUID         `json:"ticket_type_id"`
	Status            AvailabilityLevel `json:"status"`
	TotalQuantity     int               `json:"total_quantity"`
	SoldQuantity      int               `json:"sold_quantity"`
	HeldQuantity      int               `json:"held_quantity"`
	AvailableQuantity int               `json:"available_quantity"`
	CanFulfill        bool              `json:"can_fulfill"`
	Message           string            `json:"message"`
}

// EventInventoryStatus aggregates every ticket type of an event plus the
// caller's own live holds, for dashboard views.
type EventInventoryStatus struct {
	EventID        uuid.UUID              `json:"event_id"`
	TotalTickets   int                    `json:"total_tickets"`
	TotalSold      int                    `json:"total_sold"`
	TotalHeld      int                    `json:"total_held"`
	TotalAvailable int                    `json:"total_available"`
	TicketTypes    []AvailabilitySnapshot `json:"ticket_types"`
	SessionHolds   []Hold                 `json:"session_holds,omitempty"`
}
