package favorites

import (
	"context"

	"ando-storefront/internal/domain"
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

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.FavoriteSet, error) {
	const q = `
SELECT product_id
FROM account_favorites
WHERE user_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := domain.FavoriteSet{Scope: domain.ScopeAccount}
	for rows.Next() {
		var productID string
		if err := rows.Scan(&productID); err != nil {
			return nil, err
		}
		set.ProductIDs = append(set.ProductIDs, productID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if set.IsEmpty() {
		return nil, domain.ErrNotFound
	}
	return &set, nil
}

func (r *postgresRepo) Put(ctx context.Context, userID string, set domain.FavoriteSet) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM account_favorites WHERE user_id = $1`, userID); err != nil {
		return err
	}
	const insert = `
INSERT INTO account_favorites (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`
	for _, productID := range set.ProductIDs {
		if productID == "" {
			continue
		}
		if _, err := tx.Exec(ctx, insert, userID, productID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM account_favorites WHERE user_id = $1`, userID)
	return err
}
