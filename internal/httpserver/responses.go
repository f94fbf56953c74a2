package httpserver

import (
	"time"

	"ando-storefront/internal/domain"
)

type cartItemResponse struct {
	ProductID      string    `json:"productId"`
	VariantKey     string    `json:"variantKey"`
	Name           string    `json:"name"`
	Size           string    `json:"size"`
	Color          string    `json:"color"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TotalCents     int64     `json:"totalCents"`
	AddedAt        time.Time `json:"addedAt"`
}

type cartResponse struct {
	Scope           string             `json:"scope"`
	Items           []cartItemResponse `json:"items"`
	TotalItems      int                `json:"totalItems"`
	TotalPriceCents int64              `json:"totalPriceCents"`
	Persisted       bool               `json:"persisted"`
	PersistError    string             `json:"persistError,omitempty"`
}

func toCartResponse(cart domain.Cart, persisted bool, persistErr error) cartResponse {
	items := make([]cartItemResponse, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, cartItemResponse{
			ProductID:      it.ProductID,
			VariantKey:     it.VariantKey,
			Name:           it.Name,
			Size:           it.Size,
			Color:          it.Color,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			TotalCents:     it.TotalCents(),
			AddedAt:        it.AddedAt,
		})
	}
	resp := cartResponse{
		Scope:           string(cart.Scope),
		Items:           items,
		TotalItems:      cart.TotalItems(),
		TotalPriceCents: cart.TotalPriceCents(),
		Persisted:       persisted,
	}
	if persistErr != nil {
		resp.PersistError = persistErr.Error()
	}
	return resp
}

type discountResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Label       string     `json:"label"`
	Percent     int        `json:"percent"`
	Description string     `json:"description,omitempty"`
	ValidFrom   time.Time  `json:"validFrom"`
	ValidUntil  *time.Time `json:"validUntil,omitempty"`
	Consumed    bool       `json:"consumed"`
}

func toDiscountResponse(d domain.UserDiscount) discountResponse {
	return discountResponse{
		ID:          d.ID,
		Type:        string(d.Type),
		Label:       d.Type.Label(),
		Percent:     d.Percent,
		Description: d.Description,
		ValidFrom:   d.ValidFrom,
		ValidUntil:  d.ValidUntil,
		Consumed:    d.Consumed,
	}
}
