package cart

import (
	"context"

	"ando-storefront/internal/domain"
)

// Repository persists the account-scoped cart. Put is a full-state
// overwrite so a retried write can never double-apply.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Put(ctx context.Context, userID string, cart domain.Cart) error
	Clear(ctx context.Context, userID string) error
}
