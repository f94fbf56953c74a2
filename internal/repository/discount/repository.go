package discount

import (
	"context"

	"ando-storefront/internal/domain"
)

// Repository persists account-linked automatic discounts. Rows are created
// at registration (first_order) or by back-office processes; the storefront
// only reads them and marks first_order discounts consumed.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.UserDiscount, error)
	Create(ctx context.Context, d domain.UserDiscount) (*domain.UserDiscount, error)
	MarkConsumed(ctx context.Context, discountID string) error
}
