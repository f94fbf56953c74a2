package order

import (
	"context"

	"ando-storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	const q = `
INSERT INTO orders (id, user_id, subtotal_cents, discount_source, discount_percent, discount_cents, delivery_fee_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text, created_at
`
	if err := r.pool.QueryRow(ctx, q,
		o.ID,
		o.UserID,
		o.SubtotalCents,
		string(o.DiscountSource),
		o.DiscountPercent,
		o.DiscountCents,
		o.DeliveryFeeCents,
		o.TotalCents,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
