package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"ando-storefront/internal/domain"
	cartrepo "ando-storefront/internal/repository/cart"
	favoritesrepo "ando-storefront/internal/repository/favorites"
)

// Adapter is the uniform persistence surface over both scopes: the guest
// scope resolves to the device store, the account scope to the remote
// repositories keyed by user ID. Remote writes are full-state overwrites,
// so retrying after a failed response cannot double-apply.
type Adapter struct {
	device    *DeviceStore
	carts     cartrepo.Repository
	favorites favoritesrepo.Repository
	attempts  int
	backoff   time.Duration
	logger    *log.Logger
}

// New builds an Adapter. attempts and backoff govern the retry policy for
// remote calls; zero values fall back to 3 attempts with a 100ms base.
func New(device *DeviceStore, carts cartrepo.Repository, favorites favoritesrepo.Repository, attempts int, backoff time.Duration, logger *log.Logger) *Adapter {
	if attempts <= 0 {
		attempts = 3
	}
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Adapter{
		device:    device,
		carts:     carts,
		favorites: favorites,
		attempts:  attempts,
		backoff:   backoff,
		logger:    logger,
	}
}

// GetCart reads the cart for the given scope. Missing or malformed guest
// payloads report domain.ErrNotFound, never a decode failure.
func (a *Adapter) GetCart(ctx context.Context, scope domain.Scope, userID string) (*domain.Cart, error) {
	switch scope {
	case domain.ScopeGuest:
		raw, ok := a.device.get(deviceCartKey)
		if !ok {
			return nil, domain.ErrNotFound
		}
		var cart domain.Cart
		if err := json.Unmarshal(raw, &cart); err != nil {
			a.logger.Printf("discarding malformed guest cart payload: %v", err)
			a.device.remove(deviceCartKey)
			return nil, domain.ErrNotFound
		}
		cart.Scope = domain.ScopeGuest
		return &cart, nil
	case domain.ScopeAccount:
		var cart *domain.Cart
		err := a.withRetry(ctx, func() error {
			var err error
			cart, err = a.carts.GetByUser(ctx, userID)
			return err
		})
		if err != nil {
			return nil, err
		}
		return cart, nil
	}
	return nil, fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, scope)
}

// PutCart overwrites the stored cart for the given scope with the full state.
func (a *Adapter) PutCart(ctx context.Context, scope domain.Scope, userID string, cart domain.Cart) error {
	switch scope {
	case domain.ScopeGuest:
		cart.Scope = domain.ScopeGuest
		raw, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("%w: encode guest cart: %v", domain.ErrValidation, err)
		}
		a.device.put(deviceCartKey, raw)
		return nil
	case domain.ScopeAccount:
		cart.Scope = domain.ScopeAccount
		return a.withRetry(ctx, func() error {
			return a.carts.Put(ctx, userID, cart)
		})
	}
	return fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, scope)
}

// ClearCart removes the stored cart for the given scope.
func (a *Adapter) ClearCart(ctx context.Context, scope domain.Scope, userID string) error {
	switch scope {
	case domain.ScopeGuest:
		a.device.remove(deviceCartKey)
		return nil
	case domain.ScopeAccount:
		return a.withRetry(ctx, func() error {
			return a.carts.Clear(ctx, userID)
		})
	}
	return fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, scope)
}

// GetFavorites reads the favorite set for the given scope.
func (a *Adapter) GetFavorites(ctx context.Context, scope domain.Scope, userID string) (*domain.FavoriteSet, error) {
	switch scope {
	case domain.ScopeGuest:
		raw, ok := a.device.get(deviceFavoritesKey)
		if !ok {
			return nil, domain.ErrNotFound
		}
		var set domain.FavoriteSet
		if err := json.Unmarshal(raw, &set); err != nil {
			a.logger.Printf("discarding malformed guest favorites payload: %v", err)
			a.device.remove(deviceFavoritesKey)
			return nil, domain.ErrNotFound
		}
		set.Scope = domain.ScopeGuest
		return &set, nil
	case domain.ScopeAccount:
		var set *domain.FavoriteSet
		err := a.withRetry(ctx, func() error {
			var err error
			set, err = a.favorites.GetByUser(ctx, userID)
			return err
		})
		if err != nil {
			return nil, err
		}
		return set, nil
	}
	return nil, fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, scope)
}

// PutFavorites overwrites the stored favorite set for the given scope.
func (a *Adapter) PutFavorites(ctx context.Context, scope domain.Scope, userID string, set domain.FavoriteSet) error {
	switch scope {
	case domain.ScopeGuest:
		set.Scope = domain.ScopeGuest
		raw, err := json.Marshal(set)
		if err != nil {
			return fmt.Errorf("%w: encode guest favorites: %v", domain.ErrValidation, err)
		}
		a.device.put(deviceFavoritesKey, raw)
		return nil
	case domain.ScopeAccount:
		set.Scope = domain.ScopeAccount
		return a.withRetry(ctx, func() error {
			return a.favorites.Put(ctx, userID, set)
		})
	}
	return fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, scope)
}

// ClearFavorites removes the stored favorite set for the given scope.
func (a *Adapter) ClearFavorites(ctx context.Context, scope domain.Scope, userID string) error {
	switch scope {
	case domain.ScopeGuest:
		a.device.remove(deviceFavoritesKey)
		return nil
	case domain.ScopeAccount:
		return a.withRetry(ctx, func() error {
			return a.favorites.Clear(ctx, userID)
		})
	}
	return fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, scope)
}

// withRetry runs op up to a.attempts times with exponential backoff.
// ErrNotFound is a definitive answer and is never retried; anything that
// survives all attempts surfaces as ErrNetwork.
func (a *Adapter) withRetry(ctx context.Context, op func() error) error {
	backoff := a.backoff
	var lastErr error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		lastErr = op()
		if lastErr == nil || errors.Is(lastErr, domain.ErrNotFound) {
			return lastErr
		}
		if attempt == a.attempts {
			break
		}
		a.logger.Printf("remote call failed (attempt %d/%d): %v", attempt, a.attempts, lastErr)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", domain.ErrNetwork, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %v", domain.ErrNetwork, lastErr)
}
