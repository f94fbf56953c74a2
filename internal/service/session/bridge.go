package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"ando-storefront/internal/domain"
)

// State is the authentication state of the current device session.
type State string

const (
	StateGuest          State = "guest"
	StateAuthenticating State = "authenticating"
	StateMerging        State = "merging"
	StateAuthenticated  State = "authenticated"
)

// ErrLoginInFlight is returned when a login attempt arrives while another
// one is still authenticating or merging.
var ErrLoginInFlight = errors.New("login already in progress")

type authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.Customer, string, string, error)
}

type persister interface {
	GetCart(ctx context.Context, scope domain.Scope, userID string) (*domain.Cart, error)
	PutCart(ctx context.Context, scope domain.Scope, userID string, cart domain.Cart) error
	ClearCart(ctx context.Context, scope domain.Scope, userID string) error
	GetFavorites(ctx context.Context, scope domain.Scope, userID string) (*domain.FavoriteSet, error)
	PutFavorites(ctx context.Context, scope domain.Scope, userID string, set domain.FavoriteSet) error
	ClearFavorites(ctx context.Context, scope domain.Scope, userID string) error
}

// accountStore is satisfied by the cart and favorites stores.
type accountStore interface {
	BindAccount(ctx context.Context, userID string) error
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Customer     *domain.Customer
	AccessToken  string
	RefreshToken string
}

// Bridge orchestrates the one-time merge of guest-scoped cart and
// favorites into account scope on successful authentication. Guest data is
// cleared only after the account-scope writes are confirmed; a failed merge
// drops back to the guest state with guest data intact.
type Bridge struct {
	mu        sync.Mutex
	state     State
	userID    string
	auth      authenticator
	persist   persister
	cartStore accountStore
	favStore  accountStore
	logger    *log.Logger
}

// New returns a Bridge in the guest state.
func New(auth authenticator, persist persister, cartStore, favStore accountStore, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Bridge{
		state:     StateGuest,
		auth:      auth,
		persist:   persist,
		cartStore: cartStore,
		favStore:  favStore,
		logger:    logger,
	}
}

// State returns the current session state.
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// UserID returns the authenticated user, if any.
func (b *Bridge) UserID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.userID
}

// Login authenticates and, on success, merges guest state into the account
// and rebinds the stores to account scope. A concurrent login attempt while
// one is in flight is rejected with ErrLoginInFlight.
func (b *Bridge) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	b.mu.Lock()
	if b.state == StateAuthenticating || b.state == StateMerging {
		b.mu.Unlock()
		return nil, ErrLoginInFlight
	}
	prev := b.state
	b.state = StateAuthenticating
	b.mu.Unlock()

	customer, access, refresh, err := b.auth.Login(ctx, email, password)
	if err != nil {
		b.setState(prev)
		return nil, err
	}

	// The merge must run to completion even if the caller goes away: a
	// cancellation between the account write and the guest clear would leave
	// both copies alive, and a retried login would sum the guest quantities
	// into the account cart a second time.
	mergeCtx := context.WithoutCancel(ctx)

	b.setState(StateMerging)
	if err := b.merge(mergeCtx, customer.ID); err != nil {
		// Guest data stays intact; the user can retry login.
		b.setState(StateGuest)
		return nil, err
	}

	if err := b.cartStore.BindAccount(mergeCtx, customer.ID); err != nil {
		b.logger.Printf("bind cart store after merge: %v", err)
	}
	if err := b.favStore.BindAccount(mergeCtx, customer.ID); err != nil {
		b.logger.Printf("bind favorites store after merge: %v", err)
	}

	b.mu.Lock()
	b.state = StateAuthenticated
	b.userID = customer.ID
	b.mu.Unlock()

	return &LoginResult{Customer: customer, AccessToken: access, RefreshToken: refresh}, nil
}

// merge runs the one-time reconciliation. Order matters: both account-scope
// writes must be confirmed before the guest scope is cleared, never the
// other way around.
func (b *Bridge) merge(ctx context.Context, userID string) error {
	guestCart, err := b.readCart(ctx, domain.ScopeGuest, "")
	if err != nil {
		return err
	}
	guestFavs, err := b.readFavorites(ctx, domain.ScopeGuest, "")
	if err != nil {
		return err
	}

	// A second login on the same device finds an empty guest scope and
	// leaves account state untouched.
	if guestCart.IsEmpty() && guestFavs.IsEmpty() {
		return nil
	}

	accountCart, err := b.readCart(ctx, domain.ScopeAccount, userID)
	if err != nil {
		return err
	}
	accountFavs, err := b.readFavorites(ctx, domain.ScopeAccount, userID)
	if err != nil {
		return err
	}

	if !guestCart.IsEmpty() {
		merged := MergeCarts(accountCart, guestCart)
		if err := b.persist.PutCart(ctx, domain.ScopeAccount, userID, merged); err != nil {
			return mergeWriteError("cart", err)
		}
	}
	if !guestFavs.IsEmpty() {
		merged := MergeFavorites(accountFavs, guestFavs)
		if err := b.persist.PutFavorites(ctx, domain.ScopeAccount, userID, merged); err != nil {
			return mergeWriteError("favorites", err)
		}
	}

	if err := b.persist.ClearCart(ctx, domain.ScopeGuest, ""); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	if err := b.persist.ClearFavorites(ctx, domain.ScopeGuest, ""); err != nil {
		return fmt.Errorf("clear guest favorites: %w", err)
	}
	return nil
}

func (b *Bridge) readCart(ctx context.Context, scope domain.Scope, userID string) (domain.Cart, error) {
	cart, err := b.persist.GetCart(ctx, scope, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Cart{Scope: scope}, nil
		}
		return domain.Cart{}, err
	}
	return *cart, nil
}

func (b *Bridge) readFavorites(ctx context.Context, scope domain.Scope, userID string) (domain.FavoriteSet, error) {
	set, err := b.persist.GetFavorites(ctx, scope, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FavoriteSet{Scope: scope}, nil
		}
		return domain.FavoriteSet{}, err
	}
	return *set, nil
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

func mergeWriteError(kind string, err error) error {
	if errors.Is(err, domain.ErrNetwork) {
		return fmt.Errorf("merge %s: %w", kind, err)
	}
	return fmt.Errorf("merge %s: %w: %v", kind, domain.ErrConflict, err)
}

// MergeCarts unions the account and guest carts by variant key. Quantities
// sum on conflict; the account-side price snapshot wins when present, since
// the server price is authoritative when known.
func MergeCarts(account, guest domain.Cart) domain.Cart {
	merged := domain.Cart{Scope: domain.ScopeAccount}
	merged.Items = append(merged.Items, account.Items...)

	for _, guestItem := range guest.Items {
		if guestItem.Quantity <= 0 || guestItem.VariantKey == "" {
			continue
		}
		found := false
		for i := range merged.Items {
			if merged.Items[i].VariantKey == guestItem.VariantKey {
				merged.Items[i].Quantity += guestItem.Quantity
				found = true
				break
			}
		}
		if !found {
			merged.Items = append(merged.Items, guestItem)
		}
	}
	return merged
}

// MergeFavorites is the set union of account and guest favorites.
func MergeFavorites(account, guest domain.FavoriteSet) domain.FavoriteSet {
	merged := domain.FavoriteSet{Scope: domain.ScopeAccount}
	seen := make(map[string]bool)
	for _, id := range account.ProductIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		merged.ProductIDs = append(merged.ProductIDs, id)
	}
	for _, id := range guest.ProductIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		merged.ProductIDs = append(merged.ProductIDs, id)
	}
	return merged
}
