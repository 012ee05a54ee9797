package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
)

// CapacityRepository manages the per-ticket-type counter rows.
type CapacityRepository interface {
	CreateTicketType(ctx context.Context, capacity *domain.TicketTypeCapacity) error
	GetCapacity(ctx context.Context, eventID, ticketTypeID uuid.UUID) (*domain.TicketTypeCapacity, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.TicketTypeCapacity, error)
	ArchiveEvent(ctx context.Context, eventID uuid.UUID) error
}

// MutationResult carries the hold and its capacity row as they stand after a
// transition, so the engine can publish fresh availability without re-reading.
type MutationResult struct {
	Hold     *domain.Hold
	Capacity *domain.TicketTypeCapacity
	// Applied is false when the transition was an idempotent no-op (the hold
	// was already terminal).
	Applied bool
}

// HoldRepository owns the hold lifecycle. Every transition that changes a
// hold's status also adjusts the capacity counters in the same atomic step;
// capacity is never observable between the two.
type HoldRepository interface {
	// CreateHold reserves capacity and records the hold atomically. It fails
	// with ErrTicketTypeNotFound, ErrEventClosed, ErrDuplicateRequest or an
	// InsufficientCapacityError carrying the quantity actually available.
	CreateHold(ctx context.Context, hold *domain.Hold) (*domain.TicketTypeCapacity, error)

	GetHold(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error)

	// ReleaseHold moves an active hold to RELEASED or EXPIRED and returns its
	// quantity to the ledger. Releasing an already-terminal hold is not an
	// error; the result reports Applied=false and capacity moves only once.
	ReleaseHold(ctx context.Context, holdID uuid.UUID, status domain.HoldStatus, reason string) (*MutationResult, error)

	// ConvertHold moves an active hold to CONVERTED, shifting its quantity
	// from held to sold in one step. Fails with ErrAlreadyTerminal when the
	// hold has left ACTIVE.
	ConvertHold(ctx context.Context, holdID uuid.UUID) (*MutationResult, error)

	FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Hold, error)
	ListActiveBySession(ctx context.Context, sessionID string) ([]domain.Hold, error)
	CountActiveBySession(ctx context.Context, sessionID string) (int, error)
	FindByRequestID(ctx context.Context, sessionID, requestID string) (*domain.Hold, error)

	ListTransactions(ctx context.Context, eventID, ticketTypeID uuid.UUID, limit int) ([]domain.InventoryTransaction, error)
}
