package domain

import "time"

// PromoCode is a shopper-supplied discount code. Codes match
// case-insensitively; rows are read-only from the storefront's perspective
// except for the used counter.
type PromoCode struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Percent    int        `json:"discountAmount"`
	IsActive   bool       `json:"isActive"`
	MaxUses    *int       `json:"maxUses,omitempty"`
	UsedCount  int        `json:"usedCount"`
	ValidFrom  time.Time  `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ValidAt reports whether the code can be applied at now: active, inside
// its validity window and under its usage limit.
func (p PromoCode) ValidAt(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if now.Before(p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return false
	}
	return true
}
