package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_inventory/internal/core/domain"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the inventory tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

type CapacityRepository struct {
	db *sql.DB
}

func NewCapacityRepository(db *sql.DB) *CapacityRepository {
	return &CapacityRepository{db: db}
}

func (r *CapacityRepository) CreateTicketType(ctx context.Context, capacity *domain.TicketTypeCapacity) error {
	query := `
	INSERT INTO ticket_capacities (event_id, ticket_type_id, name, total_quantity, sold_quantity, held_quantity, archived, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		capacity.EventID, capacity.TicketTypeID, capacity.Name,
		capacity.TotalQuantity, capacity.SoldQuantity, capacity.HeldQuantity)
	if err != nil {
		return fmt.Errorf("failed to insert ticket capacity: %w", err)
	}

	return nil
}

func (r *CapacityRepository) GetCapacity(ctx context.Context, eventID, ticketTypeID uuid.UUID) (*domain.TicketTypeCapacity, error) {
	query := `
	SELECT event_id, ticket_type_id, name, total_quantity, sold_quantity, held_quantity, archived, updated_at
	FROM ticket_capacities
	WHERE event_id = $1 AND ticket_type_id = $2
	`

	var c domain.TicketTypeCapacity
	err := r.db.QueryRowContext(ctx, query, eventID, ticketTypeID).Scan(
		&c.EventID, &c.TicketTypeID, &c.Name,
		&c.TotalQuantity, &c.SoldQuantity, &c.HeldQuantity,
		&c.Archived, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTicketTypeNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *CapacityRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.TicketTypeCapacity, error) {
	query := `
	SELECT event_id, ticket_type_id, name, total_quantity, sold_quantity, held_quantity, archived, updated_at
	FROM ticket_capacities
	WHERE event_id = $1
	ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TicketTypeCapacity
	for rows.Next() {
		var c domain.TicketTypeCapacity
		if err := rows.Scan(
			&c.EventID, &c.TicketTypeID, &c.Name,
			&c.TotalQuantity, &c.SoldQuantity, &c.HeldQuantity,
			&c.Archived, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *CapacityRepository) ArchiveEvent(ctx context.Context, eventID uuid.UUID) error {
	query := `
	UPDATE ticket_capacities
	SET archived = TRUE, updated_at = NOW()
	WHERE event_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, eventID)
	return err
}
