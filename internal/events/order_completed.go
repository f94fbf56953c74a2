package events

import "time"

// OrderCompletedQueue carries completed-order notifications. The discount
// consumer listens here to mark first-order discounts consumed.
const OrderCompletedQueue = "order.completed"

// OrderCompleted is emitted once per completed order. DiscountID is set
// only when the order used an automatic account discount; PromoID only
// when it used a promo code.
type OrderCompleted struct {
	EventType  string    `json:"eventType"`
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	DiscountID string    `json:"discountId,omitempty"`
	PromoID    string    `json:"promoId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
