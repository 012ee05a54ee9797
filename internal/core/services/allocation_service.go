package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/clock"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
)

// AllocationConfig carries the engine tunables.
type AllocationConfig struct {
	CheckoutTTL      time.Duration
	AdminBlockTTL    time.Duration
	WaitlistOfferTTL time.Duration
	// MaxActivePerSession caps concurrently-active holds per session.
	// Zero disables the cap.
	MaxActivePerSession int
	SweepBatchSize      int
}

func (c AllocationConfig) ttlFor(t domain.HoldType) time.Duration {
	switch t {
	case domain.HoldAdminBlock:
		return c.AdminBlockTTL
	case domain.HoldWaitlistOffer:
		return c.WaitlistOfferTTL
	default:
		return c.CheckoutTTL
	}
}

// AllocationService orchestrates the capacity ledger and the hold registry.
// It is the only component that mutates inventory, and every successful
// mutation is announced through the notifier.
type AllocationService struct {
	capacities   ports.CapacityRepository
	holds        ports.HoldRepository
	notifier     ports.Notifier
	availability *AvailabilityService
	clock        clock.Clock
	logger       *slog.Logger
	cfg          AllocationConfig
}

func NewAllocationService(
	capacities ports.CapacityRepository,
	holds ports.HoldRepository,
	notifier ports.Notifier,
	availability *AvailabilityService,
	clk clock.Clock,
	logger *slog.Logger,
	cfg AllocationConfig,
) *AllocationService {
	return &AllocationService{
		capacities:   capacities,
		holds:        holds,
		notifier:     notifier,
		availability: availability,
		clock:        clk,
		logger:       logger,
		cfg:          cfg,
	}
}

type CreateHoldRequest struct {
	EventID      string `json:"event_id"`
	TicketTypeID string `json:"ticket_type_id"`
	SessionID    string `json:"session_id"`
	Quantity     int    `json:"quantity"`
	HoldType     string `json:"hold_type"`
	RequestID    string `json:"request_id"`
}

// CheckAvailability is a pure read; it never mutates and never blocks on
// writers beyond the snapshot read.
func (s *AllocationService) CheckAvailability(ctx context.Context, eventID, ticketTypeID uuid.UUID, quantity int) (*domain.AvailabilitySnapshot, error) {
	return s.availability.Snapshot(ctx, eventID, ticketTypeID, quantity)
}

func (s *AllocationService) EventStatus(ctx context.Context, eventID uuid.UUID, sessionID string) (*domain.EventInventoryStatus, error) {
	return s.availability.EventStatus(ctx, eventID, sessionID)
}

func (s *AllocationService) CreateHold(ctx context.Context, req CreateHoldRequest) (*domain.Hold, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, domain.ErrInvalidEventID
	}
	ticketTypeID, err := uuid.Parse(req.TicketTypeID)
	if err != nil {
		return nil, domain.ErrInvalidTicketType
	}
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	holdType := domain.HoldType(req.HoldType)
	if req.HoldType == "" {
		holdType = domain.HoldCheckout
	}
	if !holdType.Valid() {
		return nil, domain.ErrInvalidHoldType
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// A retried create with the same request id returns the hold the first
	// attempt made, so a caller whose request timed out can retry safely.
	if req.RequestID != "" {
		if existing, err := s.holds.FindByRequestID(ctx, sessionID, req.RequestID); err == nil {
			return s.resolveRetry(existing, req.Quantity)
		}
	}

	if s.cfg.MaxActivePerSession > 0 {
		count, err := s.holds.CountActiveBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if count >= s.cfg.MaxActivePerSession {
			return nil, domain.ErrTooManyHolds
		}
	}

	now := s.clock.Now()
	hold := &domain.Hold{
		ID:           uuid.New(),
		EventID:      eventID,
		TicketTypeID: ticketTypeID,
		SessionID:    sessionID,
		Quantity:     req.Quantity,
		Type:         holdType,
		Status:       domain.HoldActive,
		RequestID:    req.RequestID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.ttlFor(holdType)),
	}

	capacity, err := s.holds.CreateHold(ctx, hold)
	if err != nil {
		if err == domain.ErrDuplicateRequest && req.RequestID != "" {
			// A concurrent retry won the insert; surface its hold instead.
			if existing, lookupErr := s.holds.FindByRequestID(ctx, sessionID, req.RequestID); lookupErr == nil {
				return s.resolveRetry(existing, req.Quantity)
			}
		}
		return nil, err
	}

	s.publish(ctx,
		s.holdEvent(domain.EventHoldCreated, hold, capacity),
		s.inventoryEvent(capacity),
	)
	s.raiseStockAlert(ctx, capacity)

	s.logger.Info("hold created",
		"hold_id", hold.ID, "event_id", eventID, "ticket_type_id", ticketTypeID,
		"session_id", sessionID, "quantity", hold.Quantity, "hold_type", holdType,
		"expires_at", hold.ExpiresAt)

	return hold, nil
}

func (s *AllocationService) resolveRetry(existing *domain.Hold, quantity int) (*domain.Hold, error) {
	if existing.IsActive() && existing.Quantity == quantity {
		return existing, nil
	}
	return nil, domain.ErrDuplicateRequest
}

// ReleaseHold is idempotent: releasing a hold that already ended reports
// success and moves no capacity.
func (s *AllocationService) ReleaseHold(ctx context.Context, holdID uuid.UUID, reason string) error {
	if reason == "" {
		reason = "released by caller"
	}

	res, err := s.holds.ReleaseHold(ctx, holdID, domain.HoldReleased, reason)
	if err != nil {
		return err
	}
	if !res.Applied {
		return nil
	}

	s.publish(ctx,
		s.holdEvent(domain.EventHoldReleased, res.Hold, res.Capacity),
		s.inventoryEvent(res.Capacity),
	)

	s.logger.Info("hold released", "hold_id", holdID, "reason", reason, "quantity", res.Hold.Quantity)
	return nil
}

// PurchaseTickets converts a hold into a sale. A hold that already expired or
// was released fails with ErrAlreadyTerminal; the caller must re-request
// availability and hold again.
func (s *AllocationService) PurchaseTickets(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	res, err := s.holds.ConvertHold(ctx, holdID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx,
		s.holdEvent(domain.EventPurchaseCompleted, res.Hold, res.Capacity),
		s.inventoryEvent(res.Capacity),
	)
	s.raiseStockAlert(ctx, res.Capacity)

	s.logger.Info("purchase completed", "hold_id", holdID, "quantity", res.Hold.Quantity, "sold", res.Capacity.SoldQuantity)
	return res.Hold, nil
}

// ReleaseAllHoldsForSession is the best-effort cleanup used on checkout
// abandonment. Per-hold failures are logged, not aggregated into one error.
func (s *AllocationService) ReleaseAllHoldsForSession(ctx context.Context, sessionID string) int {
	holds, err := s.holds.ListActiveBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error("failed to list session holds", "session_id", sessionID, "error", err)
		return 0
	}

	released := 0
	for _, h := range holds {
		if err := s.ReleaseHold(ctx, h.ID, "session abandoned"); err != nil {
			s.logger.Error("failed to release session hold", "hold_id", h.ID, "session_id", sessionID, "error", err)
			continue
		}
		released++
	}

	return released
}

// SweepExpired reclaims holds whose deadline has passed. A hold released or
// converted between the scan and the release is a no-op.
func (s *AllocationService) SweepExpired(ctx context.Context) (int, error) {
	now := s.clock.Now()

	expired, err := s.holds.FindExpired(ctx, now, s.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, h := range expired {
		res, err := s.holds.ReleaseHold(ctx, h.ID, domain.HoldExpired, "hold expired")
		if err != nil {
			s.logger.Error("failed to expire hold", "hold_id", h.ID, "error", err)
			continue
		}
		if !res.Applied {
			continue
		}

		swept++
		s.publish(ctx,
			s.holdEvent(domain.EventHoldExpired, res.Hold, res.Capacity),
			s.inventoryEvent(res.Capacity),
		)
	}

	return swept, nil
}

// ConfigureTicketType registers capacity for a new ticket type. Total
// quantity is immutable once sales open.
func (s *AllocationService) ConfigureTicketType(ctx context.Context, capacity *domain.TicketTypeCapacity) error {
	if capacity.TotalQuantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	capacity.UpdatedAt = s.clock.Now()
	return s.capacities.CreateTicketType(ctx, capacity)
}

// CloseEvent archives every ticket type of the event; further holds fail
// with ErrEventClosed. Counters are kept, not deleted.
func (s *AllocationService) CloseEvent(ctx context.Context, eventID uuid.UUID) error {
	return s.capacities.ArchiveEvent(ctx, eventID)
}

func (s *AllocationService) Transactions(ctx context.Context, eventID, ticketTypeID uuid.UUID, limit int) ([]domain.InventoryTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.holds.ListTransactions(ctx, eventID, ticketTypeID, limit)
}

func (s *AllocationService) holdEvent(t domain.InventoryEventType, h *domain.Hold, c *domain.TicketTypeCapacity) domain.InventoryEvent {
	return domain.InventoryEvent{
		Type:              t,
		EventID:           h.EventID,
		TicketTypeID:      h.TicketTypeID,
		HoldID:            h.ID,
		Quantity:          h.Quantity,
		AvailableQuantity: c.Available(),
		OccurredAt:        s.clock.Now(),
	}
}

func (s *AllocationService) inventoryEvent(c *domain.TicketTypeCapacity) domain.InventoryEvent {
	level, message := s.availability.Classify(c)
	return domain.InventoryEvent{
		Type:              domain.EventInventoryUpdated,
		EventID:           c.EventID,
		TicketTypeID:      c.TicketTypeID,
		AvailableQuantity: c.Available(),
		Level:             level,
		Message:           message,
		OccurredAt:        s.clock.Now(),
	}
}

// raiseStockAlert publishes an alert when a mutation leaves the ticket type
// at or below the configured stock thresholds.
func (s *AllocationService) raiseStockAlert(ctx context.Context, c *domain.TicketTypeCapacity) {
	level, message := s.availability.Classify(c)
	switch level {
	case domain.LevelLowStock, domain.LevelCriticalStock, domain.LevelSoldOut:
		s.publish(ctx, domain.InventoryEvent{
			Type:              domain.EventAlertRaised,
			EventID:           c.EventID,
			TicketTypeID:      c.TicketTypeID,
			AvailableQuantity: c.Available(),
			Level:             level,
			Message:           message,
			OccurredAt:        s.clock.Now(),
		})
	}
}

// publish delivers events best-effort; a notifier failure never fails the
// mutation that produced the event.
func (s *AllocationService) publish(ctx context.Context, events ...domain.InventoryEvent) {
	for _, ev := range events {
		if err := s.notifier.Publish(ctx, ev); err != nil {
			s.logger.Error("failed to publish event", "type", ev.Type, "event_id", ev.EventID, "error", err)
		}
	}
}
