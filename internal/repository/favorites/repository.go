package favorites

import (
	"context"

	"ando-storefront/internal/domain"
)

// Repository persists the account-scoped favorite set. Put is a
// full-state overwrite, same contract as the cart repository.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.FavoriteSet, error)
	Put(ctx context.Context, userID string, set domain.FavoriteSet) error
	Clear(ctx context.Context, userID string) error
}
