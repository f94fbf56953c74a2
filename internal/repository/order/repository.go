package order

import (
	"context"

	"ando-storefront/internal/domain"
)

// Repository persists completed orders. CountByUser backs the
// first-order discount eligibility check.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
