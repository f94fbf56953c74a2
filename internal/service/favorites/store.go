package favorites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"ando-storefront/internal/domain"
)

type persister interface {
	GetFavorites(ctx context.Context, scope domain.Scope, userID string) (*domain.FavoriteSet, error)
	PutFavorites(ctx context.Context, scope domain.Scope, userID string, set domain.FavoriteSet) error
	ClearFavorites(ctx context.Context, scope domain.Scope, userID string) error
}

// Store is the session favorite set, with the same persistence discipline
// as the cart store: mutate in memory, persist full state, never roll back
// the in-memory change on persistence failure.
type Store struct {
	mu      sync.Mutex
	persist persister
	scope   domain.Scope
	userID  string
	ids     []string
}

// New returns a Store starting in guest scope.
func New(persist persister) *Store {
	return &Store{persist: persist, scope: domain.ScopeGuest}
}

// Load hydrates the in-memory set from the persisted copy of the current
// scope. Missing persisted state leaves the store empty.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.persist.GetFavorites(ctx, s.scope, s.userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.ids = nil
			return nil
		}
		return err
	}
	s.ids = append([]string(nil), stored.ProductIDs...)
	return nil
}

// BindAccount switches the store to account scope and reloads.
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

// Toggle adds the product if absent and removes it if present. It reports
// whether the product is a favorite after the call.
func (s *Store) Toggle(ctx context.Context, productID string) (bool, error) {
	if strings.TrimSpace(productID) == "" {
		return false, fmt.Errorf("%w: product id required", domain.ErrValidation)
	}

	s.mu.Lock()
	nowFavorite := true
	kept := make([]string, 0, len(s.ids)+1)
	for _, id := range s.ids {
		if id == productID {
			nowFavorite = false
			continue
		}
		kept = append(kept, id)
	}
	if nowFavorite {
		kept = append(kept, productID)
	}
	s.ids = kept
	set := s.setLocked()
	scope, userID := s.scope, s.userID
	s.mu.Unlock()

	return nowFavorite, s.persist.PutFavorites(ctx, scope, userID, set)
}

// Contains reports whether productID is currently a favorite.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.ids {
		if id == productID {
			return true
		}
	}
	return false
}

// List returns the current favorite product IDs.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

// Clear empties the set, in memory and in the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.ids = nil
	scope, userID := s.scope, s.userID
	s.mu.Unlock()
	return s.persist.ClearFavorites(ctx, scope, userID)
}

func (s *Store) setLocked() domain.FavoriteSet {
	return domain.FavoriteSet{
		Scope:      s.scope,
		ProductIDs: append([]string(nil), s.ids...),
	}
}
