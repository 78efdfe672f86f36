package partners

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocklane/stocklane/internal/shared"
)

// Repository persists partners in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a partner and returns its id.
func (r *Repository) Create(ctx context.Context, kind Kind, input PartnerInput) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO partners (kind, name, email, phone) VALUES ($1, $2, $3, $4) RETURNING id`,
		string(kind), input.Name, input.Email, input.Phone).Scan(&id)
	return id, err
}

// Get returns a partner by id.
func (r *Repository) Get(ctx context.Context, id int64) (Partner, error) {
	var p Partner
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, name, email, phone, created_at FROM partners WHERE id=$1`, id).
		Scan(&p.ID, &p.Kind, &p.Name, &p.Email, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, shared.ErrNotFound
		}
		return Partner{}, err
	}
	return p, nil
}

// List returns all partners of the given kind ordered by name.
func (r *Repository) List(ctx context.Context, kind Kind) ([]Partner, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, kind, name, email, phone, created_at FROM partners WHERE kind=$1 ORDER BY name, id`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Kind, &p.Name, &p.Email, &p.Phone, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
