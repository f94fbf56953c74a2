package domain

import "time"

// DiscountSource tells which mechanism produced the applied discount.
type DiscountSource string

const (
	DiscountSourceNone    DiscountSource = "none"
	DiscountSourcePromo   DiscountSource = "promo"
	DiscountSourceAccount DiscountSource = "account"
)

// AppliedDiscount is the single discount selected for an order.
type AppliedDiscount struct {
	Source      DiscountSource `json:"source"`
	Percent     int            `json:"percent"`
	AmountCents int64          `json:"amountCents"`
	PromoCode   string         `json:"promoCode,omitempty"`
	DiscountID  string         `json:"discountId,omitempty"`
}

// OrderSummary is derived at checkout, never stored.
// Total = Subtotal - Discount + DeliveryFee; the fee is never discounted.
type OrderSummary struct {
	SubtotalCents    int64           `json:"subtotalCents"`
	Discount         AppliedDiscount `json:"appliedDiscount"`
	DeliveryFeeCents int64           `json:"deliveryFeeCents"`
	TotalCents       int64           `json:"totalCents"`
}

// Order is the minimal completed-order record kept so first-order
// eligibility checks have something real to count.
type Order struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	SubtotalCents    int64          `json:"subtotalCents"`
	DiscountSource   DiscountSource `json:"discountSource"`
	DiscountPercent  int            `json:"discountPercent"`
	DiscountCents    int64          `json:"discountCents"`
	DeliveryFeeCents int64          `json:"deliveryFeeCents"`
	TotalCents       int64          `json:"totalCents"`
	CreatedAt        time.Time      `json:"createdAt"`
}
