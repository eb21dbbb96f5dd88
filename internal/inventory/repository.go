package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Repository defines inventory persistence operations.
type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	Search(ctx context.Context, c Criteria) ([]Vehicle, error)
	SearchSimilar(ctx context.Context, embedding []float32, c Criteria) ([]Vehicle, error)
	SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a pgx-backed inventory repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const vehicleColumns = `id, brand, model, year, price, body_type, fuel_type, transmission, mileage, color, available`

func (r *postgresRepository) Create(ctx context.Context, v *Vehicle) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO vehicles (id, brand, model, year, price, body_type, fuel_type, transmission, mileage, color, available)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.Brand, v.Model, v.Year, v.Price, strings.ToLower(v.BodyType),
		strings.ToLower(v.FuelType), strings.ToLower(v.Transmission), v.Mileage, v.Color, v.Available)
	if err != nil {
		return fmt.Errorf("inserting vehicle: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	v := &Vehicle{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id).Scan(
		&v.ID, &v.Brand, &v.Model, &v.Year, &v.Price, &v.BodyType,
		&v.FuelType, &v.Transmission, &v.Mileage, &v.Color, &v.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting vehicle: %w", err)
	}
	return v, nil
}

// Search filters available vehicles by the criteria and ranks them by price
// proximity to the middle of the budget band, so the best-fitting cars come
// first even when the band is wide.
func (r *postgresRepository) Search(ctx context.Context, c Criteria) ([]Vehicle, error) {
	c.Normalize()

	where := []string{"available = TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.BudgetMin > 0 {
		where = append(where, "price >= "+arg(c.BudgetMin))
	}
	if c.BudgetMax > 0 {
		where = append(where, "price <= "+arg(c.BudgetMax))
	}
	if len(c.BodyTypes) > 0 {
		where = append(where, "body_type = ANY("+arg(c.BodyTypes)+")")
	}
	if len(c.Brands) > 0 {
		where = append(where, "LOWER(brand) = ANY("+arg(c.Brands)+")")
	}
	if c.FuelType != "" {
		where = append(where, "fuel_type = "+arg(c.FuelType))
	}
	if c.Transmission != "" {
		where = append(where, "transmission = "+arg(c.Transmission))
	}

	order := "price ASC"
	if c.BudgetMin > 0 && c.BudgetMax > 0 {
		mid := (c.BudgetMin + c.BudgetMax) / 2
		order = "ABS(price - " + arg(mid) + ") ASC"
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY ` + order + ` LIMIT ` + arg(c.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching vehicles: %w", err)
	}
	defer rows.Close()
	return scanVehicles(rows)
}

// SearchSimilar ranks vehicles by cosine distance between their description
// embedding and the query embedding, still honoring the structured filters.
func (r *postgresRepository) SearchSimilar(ctx context.Context, embedding []float32, c Criteria) ([]Vehicle, error) {
	c.Normalize()
	vec := pgvector.NewVector(embedding)

	where := []string{"available = TRUE", "embedding IS NOT NULL"}
	args := []any{vec}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.BudgetMax > 0 {
		where = append(where, "price <= "+arg(c.BudgetMax))
	}
	if len(c.BodyTypes) > 0 {
		where = append(where, "body_type = ANY("+arg(c.BodyTypes)+")")
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE ` +
		strings.Join(where, " AND ") +
		` ORDER BY embedding <=> $1 LIMIT ` + arg(c.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching similar vehicles: %w", err)
	}
	defer rows.Close()
	return scanVehicles(rows)
}

func (r *postgresRepository) SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE vehicles SET embedding = $2 WHERE id = $1`,
		id, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("setting vehicle embedding: %w", err)
	}
	return nil
}

func scanVehicles(rows pgx.Rows) ([]Vehicle, error) {
	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.Brand, &v.Model, &v.Year, &v.Price, &v.BodyType,
			&v.FuelType, &v.Transmission, &v.Mileage, &v.Color, &v.Available); err != nil {
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
