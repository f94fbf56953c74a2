package promo

import (
	"context"

	"ando-storefront/internal/domain"
)

// Repository persists promo codes. Lookups are case-insensitive on the
// code; the storefront only bumps the usage counter.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	Create(ctx context.Context, p domain.PromoCode) (*domain.PromoCode, error)
	IncrementUsage(ctx context.Context, promoID string) error
}
