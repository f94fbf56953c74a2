package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ando-storefront/internal/domain"
)

type persister interface {
	GetCart(ctx context.Context, scope domain.Scope, userID string) (*domain.Cart, error)
	PutCart(ctx context.Context, scope domain.Scope, userID string, cart domain.Cart) error
	ClearCart(ctx context.Context, scope domain.Scope, userID string) error
}

// Store is the session cart. The in-memory view is the source of truth for
// the current session; the persisted copy is the source of truth across
// reloads and logins. Mutations apply in memory first and then persist the
// full cart state; a persistence failure is returned to the caller but
// never rolls back the in-memory change.
type Store struct {
	mu      sync.Mutex
	persist persister
	scope   domain.Scope
	userID  string
	cart    domain.Cart
	now     func() time.Time
}

// New returns a Store starting in guest scope.
func New(persist persister) *Store {
	return &Store{
		persist: persist,
		scope:   domain.ScopeGuest,
		cart:    domain.Cart{Scope: domain.ScopeGuest},
		now:     time.Now,
	}
}

// Load hydrates the in-memory cart from the persisted copy of the current
// scope. A missing persisted cart leaves the store empty.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.persist.GetCart(ctx, s.scope, s.userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.cart = domain.Cart{Scope: s.scope}
			return nil
		}
		return err
	}
	s.cart = *stored
	s.cart.Scope = s.scope
	return nil
}

// BindAccount switches the store to account scope and reloads the account
// cart. The session bridge calls this after a successful merge.
func (s *Store) BindAccount(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id required", domain.ErrValidation)
	}
	s.mu.Lock()
	s.scope = domain.ScopeAccount
	s.userID = userID
	s.mu.Unlock()
	return s.Load(ctx)
}

// AddItem adds one unit of the product variant. Adding an existing variant
// increments its quantity; a new variant starts at quantity 1.
func (s *Store) AddItem(ctx context.Context, productID, name, size, color string, unitPriceCents int64) (domain.Cart, error) {
	if strings.TrimSpace(productID) == "" {
		return s.Snapshot(), fmt.Errorf("%w: product id required", domain.ErrValidation)
	}
	if unitPriceCents < 0 {
		return s.Snapshot(), fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}

	s.mu.Lock()
	key := domain.VariantKey(productID, size, color)
	found := false
	for i := range s.cart.Items {
		if s.cart.Items[i].VariantKey == key {
			s.cart.Items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.cart.Items = append(s.cart.Items, domain.LineItem{
			ProductID:      productID,
			VariantKey:     key,
			Name:           name,
			Size:           size,
			Color:          color,
			Quantity:       1,
			UnitPriceCents: unitPriceCents,
			AddedAt:        s.now().UTC(),
		})
	}
	snapshot := s.snapshotLocked()
	scope, userID := s.scope, s.userID
	s.mu.Unlock()

	return snapshot, s.persist.PutCart(ctx, scope, userID, snapshot)
}

// UpdateQuantity sets the quantity of the line keyed by variantKey.
// A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, variantKey string, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, variantKey)
	}

	s.mu.Lock()
	found := false
	for i := range s.cart.Items {
		if s.cart.Items[i].VariantKey == variantKey {
			s.cart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	snapshot := s.snapshotLocked()
	scope, userID := s.scope, s.userID
	s.mu.Unlock()

	if !found {
		return snapshot, fmt.Errorf("%w: no cart line %q", domain.ErrNotFound, variantKey)
	}
	return snapshot, s.persist.PutCart(ctx, scope, userID, snapshot)
}

// RemoveItem deletes the line keyed by variantKey unconditionally.
func (s *Store) RemoveItem(ctx context.Context, variantKey string) (domain.Cart, error) {
	s.mu.Lock()
	kept := s.cart.Items[:0]
	for _, item := range s.cart.Items {
		if item.VariantKey != variantKey {
			kept = append(kept, item)
		}
	}
	s.cart.Items = kept
	snapshot := s.snapshotLocked()
	scope, userID := s.scope, s.userID
	s.mu.Unlock()

	return snapshot, s.persist.PutCart(ctx, scope, userID, snapshot)
}

// Clear empties the cart, in memory and in the persisted copy.
func (s *Store) Clear(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	s.cart.Items = nil
	snapshot := s.snapshotLocked()
	scope, userID := s.scope, s.userID
	s.mu.Unlock()

	return snapshot, s.persist.ClearCart(ctx, scope, userID)
}

// Snapshot returns a copy of the current in-memory cart.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() domain.Cart {
	out := s.cart
	out.Items = append([]domain.LineItem(nil), s.cart.Items...)
	return out
}

// TotalItems is the summed quantity of the in-memory cart.
func (s *Store) TotalItems() int {
	return s.Snapshot().TotalItems()
}

// TotalPriceCents is the summed line total of the in-memory cart.
func (s *Store) TotalPriceCents() int64 {
	return s.Snapshot().TotalPriceCents()
}
