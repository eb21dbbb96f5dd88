package lead

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is one captured lead as persisted for the operator dashboard. The
// NATS event is the delivery channel; the row is the system of record.
type Record struct {
	ID           uuid.UUID `json:"id"`
	Identity     string    `json:"identity"`
	CustomerName string    `json:"customer_name"`
	Vehicle      string    `json:"vehicle"`
	VehicleID    string    `json:"vehicle_id,omitempty"`
	Budget       float64   `json:"budget"`
	Confidence   float64   `json:"confidence"`
	CapturedAt   time.Time `json:"captured_at"`
}

// Repository persists captured leads.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	DeleteByIdentity(ctx context.Context, identity string) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the Postgres lead repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO leads (id, identity, customer_name, vehicle, vehicle_id, budget, confidence, captured_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7, $8)`,
		rec.ID, rec.Identity, rec.CustomerName, rec.Vehicle, rec.VehicleID,
		rec.Budget, rec.Confidence, rec.CapturedAt)
	if err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, identity, customer_name, vehicle, COALESCE(vehicle_id::text, ''), budget, confidence, captured_at
		 FROM leads ORDER BY captured_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Identity, &rec.CustomerName, &rec.Vehicle,
			&rec.VehicleID, &rec.Budget, &rec.Confidence, &rec.CapturedAt); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteByIdentity erases every lead captured for the identity. Part of the
// data-erasure flow.
func (r *postgresRepository) DeleteByIdentity(ctx context.Context, identity string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE identity = $1`, identity)
	if err != nil {
		return fmt.Errorf("deleting leads for identity: %w", err)
	}
	return nil
}
