package domain

import (
	"fmt"
	"strings"
	"time"
)

// Scope identifies which backing store owns a piece of commerce state.
type Scope string

const (
	// ScopeGuest is device-local, ephemeral state of an unauthenticated visitor.
	ScopeGuest Scope = "guest"
	// ScopeAccount is durable, server-side state of an authenticated user.
	ScopeAccount Scope = "account"
)

// LineItem is a single cart line. Identity within a cart is the VariantKey;
// a zero-quantity line never persists.
type LineItem struct {
	ProductID      string    `json:"productId"`
	VariantKey     string    `json:"variantKey"`
	Name           string    `json:"name,omitempty"`
	Size           string    `json:"size,omitempty"`
	Color          string    `json:"color,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	AddedAt        time.Time `json:"addedAt"`
}

// TotalCents is the line total.
func (l LineItem) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Cart is a collection of line items belonging to one scope.
type Cart struct {
	Scope Scope      `json:"scope"`
	Items []LineItem `json:"items"`
}

// TotalItems sums quantities over all lines.
func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPriceCents sums quantity times unit price snapshot over all lines.
func (c Cart) TotalPriceCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.TotalCents()
	}
	return total
}

// Find returns the line keyed by variantKey, if any.
func (c Cart) Find(variantKey string) (LineItem, bool) {
	for _, item := range c.Items {
		if item.VariantKey == variantKey {
			return item, true
		}
	}
	return LineItem{}, false
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// VariantKey derives the cart-line identity from product, size and color.
// Two adds of the same product in the same size and color merge into one line.
func VariantKey(productID, size, color string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimSpace(productID),
		strings.ToLower(strings.TrimSpace(size)),
		strings.ToLower(strings.TrimSpace(color)),
	)
}
