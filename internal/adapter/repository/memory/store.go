package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/clock"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
)

type capKey struct {
	eventID      uuid.UUID
	ticketTypeID uuid.UUID
}

// Store is the in-process inventory store. Mutations on the same ticket type
// serialize on a per-key mutex; different ticket types never contend. Records
// are replaced, not mutated, so the outer RWMutex guards only map structure
// and is held just long enough to swap or copy a pointer.
type Store struct {
	clock clock.Clock

	mu    sync.RWMutex
	caps  map[capKey]*domain.TicketTypeCapacity
	holds map[uuid.UUID]*domain.Hold
	txns  []domain.InventoryTransaction
	locks map[capKey]*sync.Mutex
}

var (
	_ ports.CapacityRepository = (*Store)(nil)
	_ ports.HoldRepository     = (*Store)(nil)
)

func NewStore(clk clock.Clock) *Store {
	return &Store{
		clock: clk,
		caps:  make(map[capKey]*domain.TicketTypeCapacity),
		holds: make(map[uuid.UUID]*domain.Hold),
		locks: make(map[capKey]*sync.Mutex),
	}
}

func (s *Store) keyLock(k capKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[k]
	if !ok {
		l = &sync.Mutex{}
		s.locks[k] = l
	}
	return l
}

func (s *Store) capacity(k capKey) (domain.TicketTypeCapacity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.caps[k]
	if !ok {
		return domain.TicketTypeCapacity{}, false
	}
	return *c, true
}

func (s *Store) hold(id uuid.UUID) (domain.Hold, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holds[id]
	if !ok {
		return domain.Hold{}, false
	}
	return *h, true
}

func (s *Store) CreateTicketType(ctx context.Context, capacity *domain.TicketTypeCapacity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := capKey{capacity.EventID, capacity.TicketTypeID}
	if _, exists := s.caps[k]; exists {
		return domain.ErrDuplicateRequest
	}
	c := *capacity
	s.caps[k] = &c
	return nil
}

func (s *Store) GetCapacity(ctx context.Context, eventID, ticketTypeID uuid.UUID) (*domain.TicketTypeCapacity, error) {
	c, ok := s.capacity(capKey{eventID, ticketTypeID})
	if !ok {
		return nil, domain.ErrTicketTypeNotFound
	}
	return &c, nil
}

func (s *Store) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.TicketTypeCapacity, error) {
	s.mu.RLock()
	var out []domain.TicketTypeCapacity
	for k, c := range s.caps {
		if k.eventID == eventID {
			out = append(out, *c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ArchiveEvent(ctx context.Context, eventID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, c := range s.caps {
		if k.eventID == eventID {
			archived := *c
			archived.Archived = true
			s.caps[k] = &archived
		}
	}
	return nil
}

func (s *Store) CreateHold(ctx context.Context, hold *domain.Hold) (*domain.TicketTypeCapacity, error) {
	k := capKey{hold.EventID, hold.TicketTypeID}
	l := s.keyLock(k)
	l.Lock()
	defer l.Unlock()

	c, ok := s.capacity(k)
	if !ok {
		return nil, domain.ErrTicketTypeNotFound
	}
	if c.Archived {
		return nil, domain.ErrEventClosed
	}
	available := c.Available()
	if hold.Quantity > available {
		return nil, &domain.InsufficientCapacityError{Requested: hold.Quantity, Available: available}
	}

	c.HeldQuantity += hold.Quantity
	c.UpdatedAt = hold.CreatedAt
	h := *hold

	s.mu.Lock()
	if h.RequestID != "" {
		for _, existing := range s.holds {
			if existing.SessionID == h.SessionID && existing.RequestID == h.RequestID {
				s.mu.Unlock()
				return nil, domain.ErrDuplicateRequest
			}
		}
	}
	s.caps[k] = &c
	s.holds[h.ID] = &h
	s.record(domain.TxnHoldCreate, &h, available, c.Available(), "hold created")
	s.mu.Unlock()

	cp := c
	return &cp, nil
}

func (s *Store) GetHold(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	h, ok := s.hold(holdID)
	if !ok {
		return nil, domain.ErrHoldNotFound
	}
	return &h, nil
}

func (s *Store) ReleaseHold(ctx context.Context, holdID uuid.UUID, status domain.HoldStatus, reason string) (*ports.MutationResult, error) {
	h, ok := s.hold(holdID)
	if !ok {
		return nil, domain.ErrHoldNotFound
	}

	k := capKey{h.EventID, h.TicketTypeID}
	l := s.keyLock(k)
	l.Lock()
	defer l.Unlock()

	// Re-read under the key lock; a concurrent convert or sweep may have won.
	h, _ = s.hold(holdID)
	c, _ := s.capacity(k)
	if !h.IsActive() {
		return &ports.MutationResult{Hold: &h, Capacity: &c, Applied: false}, nil
	}

	prev := c.Available()
	now := s.clock.Now()
	c.HeldQuantity -= h.Quantity
	c.UpdatedAt = now
	h.Status = status
	h.Reason = reason
	h.ReleasedAt = &now

	txnType := domain.TxnHoldRelease
	if status == domain.HoldExpired {
		txnType = domain.TxnHoldExpire
	}

	s.mu.Lock()
	s.caps[k] = &c
	s.holds[holdID] = &h
	s.record(txnType, &h, prev, c.Available(), reason)
	s.mu.Unlock()

	hc, cc := h, c
	return &ports.MutationResult{Hold: &hc, Capacity: &cc, Applied: true}, nil
}

func (s *Store) ConvertHold(ctx context.Context, holdID uuid.UUID) (*ports.MutationResult, error) {
	h, ok := s.hold(holdID)
	if !ok {
		return nil, domain.ErrHoldNotFound
	}

	k := capKey{h.EventID, h.TicketTypeID}
	l := s.keyLock(k)
	l.Lock()
	defer l.Unlock()

	h, _ = s.hold(holdID)
	c, _ := s.capacity(k)
	if !h.IsActive() {
		return nil, domain.ErrAlreadyTerminal
	}

	prev := c.Available()
	now := s.clock.Now()
	c.HeldQuantity -= h.Quantity
	c.SoldQuantity += h.Quantity
	c.UpdatedAt = now
	h.Status = domain.HoldConverted
	h.ReleasedAt = &now

	s.mu.Lock()
	s.caps[k] = &c
	s.holds[holdID] = &h
	s.record(domain.TxnPurchase, &h, prev, c.Available(), "purchase completed")
	s.mu.Unlock()

	hc, cc := h, c
	return &ports.MutationResult{Hold: &hc, Capacity: &cc, Applied: true}, nil
}

func (s *Store) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Hold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Hold
	for _, h := range s.holds {
		if h.ExpiredAt(now) {
			out = append(out, *h)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) ListActiveBySession(ctx context.Context, sessionID string) ([]domain.Hold, error) {
	s.mu.RLock()
	var out []domain.Hold
	for _, h := range s.holds {
		if h.SessionID == sessionID && h.IsActive() {
			out = append(out, *h)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountActiveBySession(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, h := range s.holds {
		if h.SessionID == sessionID && h.IsActive() {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindByRequestID(ctx context.Context, sessionID, requestID string) (*domain.Hold, error) {
	if requestID == "" {
		return nil, domain.ErrHoldNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, h := range s.holds {
		if h.SessionID == sessionID && h.RequestID == requestID {
			cp := *h
			return &cp, nil
		}
	}
	return nil, domain.ErrHoldNotFound
}

func (s *Store) ListTransactions(ctx context.Context, eventID, ticketTypeID uuid.UUID, limit int) ([]domain.InventoryTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.InventoryTransaction
	for i := len(s.txns) - 1; i >= 0; i-- {
		t := s.txns[i]
		if eventID != uuid.Nil && t.EventID != eventID {
			continue
		}
		if ticketTypeID != uuid.Nil && t.TicketTypeID != ticketTypeID {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// record appends an audit entry; the caller holds mu.
func (s *Store) record(txnType domain.TransactionType, h *domain.Hold, prevAvailable, newAvailable int, reason string) {
	s.txns = append(s.txns, domain.InventoryTransaction{
		ID:                uuid.New(),
		EventID:           h.EventID,
		TicketTypeID:      h.TicketTypeID,
		HoldID:            h.ID,
		Type:              txnType,
		Quantity:          h.Quantity,
		PreviousAvailable: prevAvailable,
		NewAvailable:      newAvailable,
		SessionID:         h.SessionID,
		Reason:            reason,
		CreatedAt:         s.clock.Now(),
	})
}
