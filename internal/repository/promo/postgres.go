package promo

import (
	"context"
	"errors"
	"strings"

	"ando-storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

func (r *postgresRepo) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	const q = `
SELECT id::text, code, discount_amount, is_active, max_uses, used_count, valid_from, valid_until, created_at
FROM promo_codes
WHERE lower(code) = lower($1)
LIMIT 1
`
	var p domain.PromoCode
	if err := r.pool.QueryRow(ctx, q, strings.TrimSpace(code)).Scan(
		&p.ID,
		&p.Code,
		&p.Percent,
		&p.IsActive,
		&p.MaxUses,
		&p.UsedCount,
		&p.ValidFrom,
		&p.ValidUntil,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.PromoCode) (*domain.PromoCode, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `
INSERT INTO promo_codes (id, code, discount_amount, is_active, max_uses, valid_from, valid_until)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text, used_count, created_at
`
	if err := r.pool.QueryRow(ctx, q,
		p.ID,
		strings.TrimSpace(p.Code),
		p.Percent,
		p.IsActive,
		p.MaxUses,
		p.ValidFrom,
		p.ValidUntil,
	).Scan(&p.ID, &p.UsedCount, &p.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) IncrementUsage(ctx context.Context, promoID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE promo_codes SET used_count = used_count + 1 WHERE id = $1`, promoID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
