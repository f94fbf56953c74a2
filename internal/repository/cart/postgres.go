package cart

import (
	"context"

	"ando-storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	const q = `
SELECT product_id, variant_key, name, size, color, quantity, unit_price_cents, added_at
FROM account_cart_lines
WHERE user_id = $1
ORDER BY added_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := domain.Cart{Scope: domain.ScopeAccount}
	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(
			&line.ProductID,
			&line.VariantKey,
			&line.Name,
			&line.Size,
			&line.Color,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.AddedAt,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrNotFound
	}
	return &cart, nil
}

// Put replaces the user's stored cart with the given one in a single
// transaction. Zero-quantity lines are skipped so they never persist.
func (r *postgresRepo) Put(ctx context.Context, userID string, cart domain.Cart) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM account_cart_lines WHERE user_id = $1`, userID); err != nil {
		return err
	}
	const insert = `
INSERT INTO account_cart_lines (id, user_id, product_id, variant_key, name, size, color, quantity, unit_price_cents, added_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	for _, line := range cart.Items {
		if line.Quantity <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx, insert,
			uuid.NewString(),
			userID,
			line.ProductID,
			line.VariantKey,
			line.Name,
			line.Size,
			line.Color,
			line.Quantity,
			line.UnitPriceCents,
			line.AddedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM account_cart_lines WHERE user_id = $1`, userID)
	return err
}
