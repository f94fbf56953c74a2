package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"ando-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type promoRepo interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	IncrementUsage(ctx context.Context, promoID string) error
}

type discountRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.UserDiscount, error)
}

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// completedPublisher emits the order-completed event. Consuming the
// first-order discount happens on that event, outside the engine.
type completedPublisher interface {
	PublishOrderCompleted(ctx context.Context, orderID, userID, discountID, promoID string) error
}

// Engine evaluates promo codes and automatic account discounts against a
// cart and computes the priced order summary. At most one discount applies:
// an explicitly entered promo code always wins over automatic discounts;
// removing it re-enables automatic evaluation.
type Engine struct {
	mu        sync.Mutex
	promos    promoRepo
	discounts discountRepo
	orders    orderRepo
	publisher completedPublisher
	applied   *domain.PromoCode
	now       func() time.Time
	logger    *log.Logger
}

// New builds an Engine. publisher may be nil when eventing is disabled.
func New(promos promoRepo, discounts discountRepo, orders orderRepo, publisher completedPublisher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		promos:    promos,
		discounts: discounts,
		orders:    orders,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// ApplyPromo validates the code and makes it the order's discount.
// Unknown codes report ErrNotFound; inactive or out-of-window codes report
// ErrExpired. A failed apply leaves the previously applied code unchanged.
func (e *Engine) ApplyPromo(ctx context.Context, code string) (*domain.PromoCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: promo code required", domain.ErrValidation)
	}
	p, err := e.promos.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: promo code %q", domain.ErrNotFound, code)
		}
		return nil, err
	}
	if !p.ValidAt(e.now()) {
		return nil, fmt.Errorf("%w: promo code %q", domain.ErrExpired, code)
	}

	e.mu.Lock()
	e.applied = p
	e.mu.Unlock()
	return p, nil
}

// RemovePromo withdraws the entered code; automatic discounts apply again
// as if no code had been entered.
func (e *Engine) RemovePromo() {
	e.mu.Lock()
	e.applied = nil
	e.mu.Unlock()
}

// AppliedPromo returns the currently entered promo code, if any.
func (e *Engine) AppliedPromo() *domain.PromoCode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applied
}

// Summarize prices the cart: subtotal, the single selected discount, the
// externally supplied delivery fee (never discounted), and the total.
// userID is empty for guests, who get no automatic discounts.
func (e *Engine) Summarize(ctx context.Context, userID string, cart domain.Cart, deliveryFeeCents int64) (domain.OrderSummary, error) {
	if deliveryFeeCents < 0 {
		return domain.OrderSummary{}, fmt.Errorf("%w: delivery fee must not be negative", domain.ErrValidation)
	}

	subtotal := cart.TotalPriceCents()
	applied, err := e.selectDiscount(ctx, userID)
	if err != nil {
		return domain.OrderSummary{}, err
	}
	applied.AmountCents = discountAmountCents(subtotal, applied.Percent)

	return domain.OrderSummary{
		SubtotalCents:    subtotal,
		Discount:         applied,
		DeliveryFeeCents: deliveryFeeCents,
		TotalCents:       subtotal - applied.AmountCents + deliveryFeeCents,
	}, nil
}

// CompleteOrder persists the order, bumps promo usage, publishes the
// order-completed event and resets the applied promo. Consuming the
// first-order discount is the event consumer's job.
func (e *Engine) CompleteOrder(ctx context.Context, userID string, cart domain.Cart, deliveryFeeCents int64) (*domain.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrValidation)
	}
	if cart.IsEmpty() {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	summary, err := e.Summarize(ctx, userID, cart, deliveryFeeCents)
	if err != nil {
		return nil, err
	}

	created, err := e.orders.Create(ctx, domain.Order{
		UserID:           userID,
		SubtotalCents:    summary.SubtotalCents,
		DiscountSource:   summary.Discount.Source,
		DiscountPercent:  summary.Discount.Percent,
		DiscountCents:    summary.Discount.AmountCents,
		DeliveryFeeCents: summary.DeliveryFeeCents,
		TotalCents:       summary.TotalCents,
	})
	if err != nil {
		return nil, err
	}

	promoID := ""
	if summary.Discount.Source == domain.DiscountSourcePromo {
		e.mu.Lock()
		if e.applied != nil {
			promoID = e.applied.ID
		}
		e.mu.Unlock()
		if promoID != "" {
			if err := e.promos.IncrementUsage(ctx, promoID); err != nil {
				e.logger.Printf("increment promo usage %s: %v", promoID, err)
			}
		}
	}

	if e.publisher != nil {
		discountID := ""
		if summary.Discount.Source == domain.DiscountSourceAccount {
			discountID = summary.Discount.DiscountID
		}
		if err := e.publisher.PublishOrderCompleted(ctx, created.ID, userID, discountID, promoID); err != nil {
			e.logger.Printf("publish order completed %s: %v", created.ID, err)
		}
	}

	e.RemovePromo()
	return created, nil
}

// selectDiscount applies the precedence policy: entered promo code first,
// otherwise the best eligible automatic discount, otherwise none.
func (e *Engine) selectDiscount(ctx context.Context, userID string) (domain.AppliedDiscount, error) {
	e.mu.Lock()
	applied := e.applied
	e.mu.Unlock()

	if applied != nil {
		if !applied.ValidAt(e.now()) {
			return domain.AppliedDiscount{}, fmt.Errorf("%w: promo code %q", domain.ErrExpired, applied.Code)
		}
		return domain.AppliedDiscount{
			Source:    domain.DiscountSourcePromo,
			Percent:   applied.Percent,
			PromoCode: applied.Code,
		}, nil
	}

	if userID == "" {
		return domain.AppliedDiscount{Source: domain.DiscountSourceNone}, nil
	}

	best, err := e.bestAccountDiscount(ctx, userID)
	if err != nil {
		return domain.AppliedDiscount{}, err
	}
	if best == nil {
		return domain.AppliedDiscount{Source: domain.DiscountSourceNone}, nil
	}
	return domain.AppliedDiscount{
		Source:     domain.DiscountSourceAccount,
		Percent:    best.Percent,
		DiscountID: best.ID,
	}, nil
}

// bestAccountDiscount returns the eligible discount with the highest
// percent, ties broken by earliest valid_from. first_order rows are only
// eligible while the account has zero completed orders, and never after
// consumption.
func (e *Engine) bestAccountDiscount(ctx context.Context, userID string) (*domain.UserDiscount, error) {
	discounts, err := e.discounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(discounts) == 0 {
		return nil, nil
	}

	completedOrders := -1
	now := e.now()
	var best *domain.UserDiscount
	for i := range discounts {
		d := discounts[i]
		if d.Consumed || !d.ValidAt(now) || d.Percent <= 0 || d.Percent > 100 {
			continue
		}
		if d.Type == domain.DiscountFirstOrder {
			if completedOrders < 0 {
				completedOrders, err = e.orders.CountByUser(ctx, userID)
				if err != nil {
					return nil, err
				}
			}
			if completedOrders > 0 {
				continue
			}
		}
		if best == nil ||
			d.Percent > best.Percent ||
			(d.Percent == best.Percent && d.ValidFrom.Before(best.ValidFrom)) {
			best = &discounts[i]
		}
	}
	return best, nil
}

// discountAmountCents rounds subtotal*percent/100 half-up to the cent.
func discountAmountCents(subtotalCents int64, percent int) int64 {
	if subtotalCents <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotalCents).
		Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}
