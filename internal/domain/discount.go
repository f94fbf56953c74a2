package domain

import "time"

// DiscountType enumerates the automatic account discount kinds.
type DiscountType string

const (
	DiscountFirstOrder DiscountType = "first_order"
	DiscountBirthday   DiscountType = "birthday"
	DiscountLoyalty    DiscountType = "loyalty"
	DiscountPersonal   DiscountType = "personal"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountFirstOrder, DiscountBirthday, DiscountLoyalty, DiscountPersonal:
		return true
	}
	return false
}

// Label returns the display label for a discount type.
func (t DiscountType) Label() string {
	switch t {
	case DiscountFirstOrder:
		return "First order discount"
	case DiscountBirthday:
		return "Birthday discount"
	case DiscountLoyalty:
		return "Loyalty program"
	case DiscountPersonal:
		return "Personal discount"
	}
	return string(t)
}

// UserDiscount is an account-linked automatic discount. At most one
// first_order discount exists per account and it is marked consumed after
// the account's first completed order.
type UserDiscount struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Type        DiscountType `json:"discountType"`
	Percent     int          `json:"discountAmount"`
	Description string       `json:"description,omitempty"`
	ValidFrom   time.Time    `json:"validFrom"`
	ValidUntil  *time.Time   `json:"validUntil,omitempty"`
	Consumed    bool         `json:"consumed"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ValidAt reports whether the discount's validity window covers now.
// Consumption is a separate eligibility check owned by the discount engine.
func (d UserDiscount) ValidAt(now time.Time) bool {
	if now.Before(d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false
	}
	return true
}
