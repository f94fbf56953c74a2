package promo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ando-storefront/internal/domain"
	"ando-storefront/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_CreateLookupIncrement(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)

	maxUses := 5
	created, err := repo.Create(ctx, domain.PromoCode{
		Code:      "SPRING20",
		Percent:   20,
		IsActive:  true,
		MaxUses:   &maxUses,
		ValidFrom: time.Now().UTC().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated promo id")
	}

	// Lookup is case-insensitive.
	got, err := repo.GetByCode(ctx, "spring20")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.ID != created.ID || got.Percent != 20 || got.UsedCount != 0 {
		t.Fatalf("unexpected promo: %+v", got)
	}
	if got.MaxUses == nil || *got.MaxUses != 5 {
		t.Fatalf("expected max uses 5, got %v", got.MaxUses)
	}

	if _, err := repo.GetByCode(ctx, "NOPE"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown code: expected ErrNotFound, got %v", err)
	}

	if err := repo.IncrementUsage(ctx, created.ID); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}
	got, err = repo.GetByCode(ctx, "SPRING20")
	if err != nil {
		t.Fatalf("GetByCode after increment: %v", err)
	}
	if got.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", got.UsedCount)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, promo_codes, user_discounts, account_favorites, account_cart_lines, tokens, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
