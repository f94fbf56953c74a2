package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type promoSeed struct {
	Code       string
	Percent    int
	MaxUses    *int
	ValidUntil *time.Time
}

func intPtr(n int) *int { return &n }

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	soon := time.Now().UTC().Add(90 * 24 * time.Hour)

	promos := []promoSeed{
		{Code: "WELCOME10", Percent: 10},
		{Code: "SUMMER15", Percent: 15, ValidUntil: &soon},
		{Code: "VIP25", Percent: 25, MaxUses: intPtr(100)},
	}

	for _, p := range promos {
		if err := upsertPromo(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert promo %s: %w", p.Code, err)
		}
	}

	return nil
}

func upsertPromo(ctx context.Context, pool *pgxpool.Pool, p promoSeed) error {
	const q = `
INSERT INTO promo_codes (id, code, discount_amount, is_active, max_uses, valid_until)
VALUES ($1, $2, $3, TRUE, $4, $5)
ON CONFLICT (lower(code)) DO UPDATE
SET discount_amount = EXCLUDED.discount_amount,
    is_active = EXCLUDED.is_active,
    max_uses = EXCLUDED.max_uses,
    valid_until = EXCLUDED.valid_until
`
	_, err := pool.Exec(ctx, q, uuid.NewString(), p.Code, p.Percent, p.MaxUses, p.ValidUntil)
	return err
}
