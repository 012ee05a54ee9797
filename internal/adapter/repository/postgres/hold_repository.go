package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/srgjo27/ticket_inventory/internal/core/domain"
	"github.com/srgjo27/ticket_inventory/internal/core/ports"
)

const holdColumns = `id, event_id, ticket_type_id, session_id, quantity, hold_type, status, request_id, reason, created_at, expires_at, released_at`

type HoldRepository struct {
	db *sql.DB
}

func NewHoldRepository(db *sql.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

// CreateHold reserves capacity and records the hold in one transaction. The
// guarded UPDATE is the oversell barrier: it only matches when the requested
// quantity still fits, so concurrent reservations on the same row serialize
// on the row lock and the loser re-evaluates against the committed counters.
func (r *HoldRepository) CreateHold(ctx context.Context, hold *domain.Hold) (*domain.TicketTypeCapacity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	reserve := `
	UPDATE ticket_capacities
	SET held_quantity = held_quantity + $3, updated_at = NOW()
	WHERE event_id = $1 AND ticket_type_id = $2
		AND archived = FALSE
		AND sold_quantity + held_quantity + $3 <= total_quantity
	RETURNING event_id, ticket_type_id, name, total_quantity, sold_quantity, held_quantity, archived, updated_at
	`

	var c domain.TicketTypeCapacity
	err = tx.QueryRowContext(ctx, reserve, hold.EventID, hold.TicketTypeID, hold.Quantity).Scan(
		&c.EventID, &c.TicketTypeID, &c.Name,
		&c.TotalQuantity, &c.SoldQuantity, &c.HeldQuantity,
		&c.Archived, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, r.reserveFailure(ctx, tx, hold)
		}
		return nil, fmt.Errorf("failed to reserve capacity: %w", err)
	}

	insert := `
	INSERT INTO holds (id, event_id, ticket_type_id, session_id, quantity, hold_type, status, request_id, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(ctx, insert,
		hold.ID, hold.EventID, hold.TicketTypeID, hold.SessionID,
		hold.Quantity, hold.Type, hold.Status, hold.RequestID,
		hold.CreatedAt, hold.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, domain.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("failed to insert hold: %w", err)
	}

	prev := c.Available() + hold.Quantity
	if err := r.recordTxn(ctx, tx, domain.TxnHoldCreate, hold, prev, c.Available(), "hold created"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit hold: %w", err)
	}

	return &c, nil
}

// reserveFailure turns a non-matching reserve into the precise typed error.
func (r *HoldRepository) reserveFailure(ctx context.Context, tx *sql.Tx, hold *domain.Hold) error {
	query := `
	SELECT total_quantity, sold_quantity, held_quantity, archived
	FROM ticket_capacities
	WHERE event_id = $1 AND ticket_type_id = $2
	`

	var total, sold, held int
	var archived bool
	err := tx.QueryRowContext(ctx, query, hold.EventID, hold.TicketTypeID).Scan(&total, &sold, &held, &archived)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrTicketTypeNotFound
		}
		return err
	}
	if archived {
		return domain.ErrEventClosed
	}

	return &domain.InsufficientCapacityError{Requested: hold.Quantity, Available: total - sold - held}
}

func (r *HoldRepository) GetHold(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`

	h, err := scanHold(r.db.QueryRowContext(ctx, query, holdID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	return h, nil
}

func (r *HoldRepository) ReleaseHold(ctx context.Context, holdID uuid.UUID, status domain.HoldStatus, reason string) (*ports.MutationResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	flip := `
	UPDATE holds
	SET status = $2, reason = $3, released_at = NOW()
	WHERE id = $1 AND status = 'ACTIVE'
	RETURNING ` + holdColumns

	h, err := scanHold(tx.QueryRowContext(ctx, flip, holdID, status, reason))
	if err != nil {
		if err == sql.ErrNoRows {
			return r.terminalResult(ctx, tx, holdID)
		}
		return nil, fmt.Errorf("failed to release hold: %w", err)
	}

	c, err := r.adjustCapacity(ctx, tx, h.EventID, h.TicketTypeID, -h.Quantity, 0)
	if err != nil {
		return nil, err
	}

	txnType := domain.TxnHoldRelease
	if status == domain.HoldExpired {
		txnType = domain.TxnHoldExpire
	}
	prev := c.Available() - h.Quantity
	if err := r.recordTxn(ctx, tx, txnType, h, prev, c.Available(), reason); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit release: %w", err)
	}

	return &ports.MutationResult{Hold: h, Capacity: c, Applied: true}, nil
}

func (r *HoldRepository) ConvertHold(ctx context.Context, holdID uuid.UUID) (*ports.MutationResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	flip := `
	UPDATE holds
	SET status = 'CONVERTED', released_at = NOW()
	WHERE id = $1 AND status = 'ACTIVE'
	RETURNING ` + holdColumns

	h, err := scanHold(tx.QueryRowContext(ctx, flip, holdID))
	if err != nil {
		if err == sql.ErrNoRows {
			exists, lookupErr := r.holdExists(ctx, tx, holdID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if !exists {
				return nil, domain.ErrHoldNotFound
			}
			return nil, domain.ErrAlreadyTerminal
		}
		return nil, fmt.Errorf("failed to convert hold: %w", err)
	}

	c, err := r.adjustCapacity(ctx, tx, h.EventID, h.TicketTypeID, -h.Quantity, h.Quantity)
	if err != nil {
		return nil, err
	}

	prev := c.Available()
	if err := r.recordTxn(ctx, tx, domain.TxnPurchase, h, prev, c.Available(), "purchase completed"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return &ports.MutationResult{Hold: h, Capacity: c, Applied: true}, nil
}

func (r *HoldRepository) holdExists(ctx context.Context, tx *sql.Tx, holdID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM holds WHERE id = $1)`

	var exists bool
	if err := tx.QueryRowContext(ctx, query, holdID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// terminalResult resolves a no-op release: the hold is either unknown or
// already terminal, which callers treat as success without side effects.
func (r *HoldRepository) terminalResult(ctx context.Context, tx *sql.Tx, holdID uuid.UUID) (*ports.MutationResult, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`

	h, err := scanHold(tx.QueryRowContext(ctx, query, holdID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	c, err := r.capacityInTx(ctx, tx, h.EventID, h.TicketTypeID)
	if err != nil {
		return nil, err
	}

	return &ports.MutationResult{Hold: h, Capacity: c, Applied: false}, nil
}

func (r *HoldRepository) adjustCapacity(ctx context.Context, tx *sql.Tx, eventID, ticketTypeID uuid.UUID, heldDelta, soldDelta int) (*domain.TicketTypeCapacity, error) {
	query := `
	UPDATE ticket_capacities
	SET held_quantity = held_quantity + $3,
		sold_quantity = sold_quantity + $4,
		updated_at = NOW()
	WHERE event_id = $1 AND ticket_type_id = $2
	RETURNING event_id, ticket_type_id, name, total_quantity, sold_quantity, held_quantity, archived, updated_at
	`

	var c domain.TicketTypeCapacity
	err := tx.QueryRowContext(ctx, query, eventID, ticketTypeID, heldDelta, soldDelta).Scan(
		&c.EventID, &c.TicketTypeID, &c.Name,
		&c.TotalQuantity, &c.SoldQuantity, &c.HeldQuantity,
		&c.Archived, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust capacity: %w", err)
	}

	return &c, nil
}

func (r *HoldRepository) capacityInTx(ctx context.Context, tx *sql.Tx, eventID, ticketTypeID uuid.UUID) (*domain.TicketTypeCapacity, error) {
	query := `
	SELECT event_id, ticket_type_id, name, total_quantity, sold_quantity, held_quantity, archived, updated_at
	FROM ticket_capacities
	WHERE event_id = $1 AND ticket_type_id = $2
	`

	var c domain.TicketTypeCapacity
	err := tx.QueryRowContext(ctx, query, eventID, ticketTypeID).Scan(
		&c.EventID, &c.TicketTypeID, &c.Name,
		&c.TotalQuantity, &c.SoldQuantity, &c.HeldQuantity,
		&c.Archived, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *HoldRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Hold, error) {
	query := `
	SELECT ` + holdColumns + `
	FROM holds
	WHERE status = 'ACTIVE' AND expires_at <= $1
	ORDER BY expires_at
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHolds(rows)
}

func (r *HoldRepository) ListActiveBySession(ctx context.Context, sessionID string) ([]domain.Hold, error) {
	query := `
	SELECT ` + holdColumns + `
	FROM holds
	WHERE session_id = $1 AND status = 'ACTIVE'
	ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanHolds(rows)
}

func (r *HoldRepository) CountActiveBySession(ctx context.Context, sessionID string) (int, error) {
	query := `SELECT COUNT(*) FROM holds WHERE session_id = $1 AND status = 'ACTIVE'`

	var n int
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

func (r *HoldRepository) FindByRequestID(ctx context.Context, sessionID, requestID string) (*domain.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE session_id = $1 AND request_id = $2`

	h, err := scanHold(r.db.QueryRowContext(ctx, query, sessionID, requestID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	return h, nil
}

func (r *HoldRepository) ListTransactions(ctx context.Context, eventID, ticketTypeID uuid.UUID, limit int) ([]domain.InventoryTransaction, error) {
	query := `
	SELECT id, event_id, ticket_type_id, hold_id, txn_type, quantity, previous_available, new_available, session_id, reason, created_at
	FROM inventory_transactions
	WHERE ($1::uuid IS NULL OR event_id = $1)
		AND ($2::uuid IS NULL OR ticket_type_id = $2)
	ORDER BY created_at DESC
	LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, nullableID(eventID), nullableID(ticketTypeID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InventoryTransaction
	for rows.Next() {
		var t domain.InventoryTransaction
		if err := rows.Scan(
			&t.ID, &t.EventID, &t.TicketTypeID, &t.HoldID, &t.Type,
			&t.Quantity, &t.PreviousAvailable, &t.NewAvailable,
			&t.SessionID, &t.Reason, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func (r *HoldRepository) recordTxn(ctx context.Context, tx *sql.Tx, txnType domain.TransactionType, h *domain.Hold, prevAvailable, newAvailable int, reason string) error {
	query := `
	INSERT INTO inventory_transactions (id, event_id, ticket_type_id, hold_id, txn_type, quantity, previous_available, new_available, session_id, reason, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`

	_, err := tx.ExecContext(ctx, query,
		uuid.New(), h.EventID, h.TicketTypeID, h.ID, txnType,
		h.Quantity, prevAvailable, newAvailable, h.SessionID, reason)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

func nullableID(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHold(row rowScanner) (*domain.Hold, error) {
	var h domain.Hold
	var reason sql.NullString
	var releasedAt sql.NullTime

	err := row.Scan(
		&h.ID, &h.EventID, &h.TicketTypeID, &h.SessionID,
		&h.Quantity, &h.Type, &h.Status, &h.RequestID,
		&reason, &h.CreatedAt, &h.ExpiresAt, &releasedAt,
	)
	if err != nil {
		return nil, err
	}

	if reason.Valid {
		h.Reason = reason.String
	}
	if releasedAt.Valid {
		h.ReleasedAt = &releasedAt.Time
	}

	return &h, nil
}

func scanHolds(rows *sql.Rows) ([]domain.Hold, error) {
	var out []domain.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
