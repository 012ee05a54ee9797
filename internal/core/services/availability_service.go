package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
)

// Thresholds configure stock level classification.
type Thresholds struct {
	LowStock      int
	CriticalStock int
}

// AvailabilityService is the read side: it recomputes availability snapshots
// from the capacity counters on every call and never caches them.
type AvailabilityService struct {
	capacities ports.CapacityRepository
	holds      ports.HoldRepository
	thresholds Thresholds
}

func NewAvailabilityService(capacities ports.CapacityRepository, holds ports.HoldRepository, thresholds Thresholds) *AvailabilityService {
	return &AvailabilityService{
		capacities: capacities,
		holds:      holds,
		thresholds: thresholds,
	}
}

// Snapshot classifies one ticket type. An unknown ticket type is reported as
// coming-soon rather than an error so storefronts can render it directly.
func (s *AvailabilityService) Snapshot(ctx context.Context, eventID, ticketTypeID uuid.UUID, quantity int) (*domain.AvailabilitySnapshot, error) {
	c, err := s.capacities.GetCapacity(ctx, eventID, ticketTypeID)
	if err != nil {
		if err == domain.ErrTicketTypeNotFound {
			return &domain.AvailabilitySnapshot{
				EventID:      eventID,
				TicketTypeID: ticketTypeID,
				Status:       domain.LevelComingSoon,
				Message:      "Tickets not yet available",
			}, nil
		}
		return nil, err
	}

	return s.snapshotOf(c, quantity), nil
}

func (s *AvailabilityService) snapshotOf(c *domain.TicketTypeCapacity, quantity int) *domain.AvailabilitySnapshot {
	level, message := s.Classify(c)
	return &domain.AvailabilitySnapshot{
		EventID:           c.EventID,
		TicketTypeID:      c.TicketTypeID,
		Status:            level,
		TotalQuantity:     c.TotalQuantity,
		SoldQuantity:      c.SoldQuantity,
		HeldQuantity:      c.HeldQuantity,
		AvailableQuantity: c.Available(),
		CanFulfill:        quantity > 0 && quantity <= c.Available() && !c.Archived,
		Message:           message,
	}
}

// Classify maps a capacity row to a stock level and a human message.
func (s *AvailabilityService) Classify(c *domain.TicketTypeCapacity) (domain.AvailabilityLevel, string) {
	available := c.Available()

	switch {
	case available <= 0:
		return domain.LevelSoldOut, "Sold Out"
	case available <= s.thresholds.CriticalStock:
		return domain.LevelCriticalStock, fmt.Sprintf("Only %d left!", available)
	case available <= s.thresholds.LowStock:
		return domain.LevelLowStock, fmt.Sprintf("Only %d remaining", available)
	default:
		return domain.LevelAvailable, fmt.Sprintf("%d available", available)
	}
}

// EventStatus aggregates every ticket type of an event. When sessionID is
// non-empty the caller's own live holds are included.
func (s *AvailabilityService) EventStatus(ctx context.Context, eventID uuid.UUID, sessionID string) (*domain.EventInventoryStatus, error) {
	capacities, err := s.capacities.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	status := &domain.EventInventoryStatus{EventID: eventID}
	for i := range capacities {
		c := &capacities[i]
		status.TotalTickets += c.TotalQuantity
		status.TotalSold += c.SoldQuantity
		status.TotalHeld += c.HeldQuantity
		status.TotalAvailable += c.Available()
		status.TicketTypes = append(status.TicketTypes, *s.snapshotOf(c, 0))
	}

	if sessionID != "" {
		holds, err := s.holds.ListActiveBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		for _, h := range holds {
			if h.EventID == eventID {
				status.SessionHolds = append(status.SessionHolds, h)
			}
		}
	}

	return status, nil
}
