package discount

import (
	"context"
	"errors"

	"ando-storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.UserDiscount, error) {
	const q = `
SELECT id::text, user_id::text, discount_type, discount_amount, description, valid_from, valid_until, consumed, created_at
FROM user_discounts
WHERE user_id = $1
ORDER BY discount_amount DESC, valid_from ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserDiscount
	for rows.Next() {
		var d domain.UserDiscount
		var description *string
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.Type,
			&d.Percent,
			&description,
			&d.ValidFrom,
			&d.ValidUntil,
			&d.Consumed,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		if description != nil {
			d.Description = *description
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Create(ctx context.Context, d domain.UserDiscount) (*domain.UserDiscount, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	const q = `
INSERT INTO user_discounts (id, user_id, discount_type, discount_amount, description, valid_from, valid_until, consumed)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
RETURNING id::text, created_at
`
	if err := r.pool.QueryRow(ctx, q,
		d.ID,
		d.UserID,
		string(d.Type),
		d.Percent,
		d.Description,
		d.ValidFrom,
		d.ValidUntil,
		d.Consumed,
	).Scan(&d.ID, &d.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &d, nil
}

func (r *postgresRepo) MarkConsumed(ctx context.Context, discountID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE user_discounts SET consumed = TRUE WHERE id = $1`, discountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
