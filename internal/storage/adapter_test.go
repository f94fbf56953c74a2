package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"ando-storefront/internal/domain"
)

type stubCartRepo struct {
	cart     *domain.Cart
	getErr   error
	putErr   error
	clearErr error
	getCalls int
	putCalls int
	lastPut  domain.Cart
}

func (s *stubCartRepo) GetByUser(_ context.Context, _ string) (*domain.Cart, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.cart, nil
}

func (s *stubCartRepo) Put(_ context.Context, _ string, cart domain.Cart) error {
	s.putCalls++
	s.lastPut = cart
	return s.putErr
}

func (s *stubCartRepo) Clear(_ context.Context, _ string) error {
	return s.clearErr
}

type stubFavoritesRepo struct {
	set      *domain.FavoriteSet
	getErr   error
	putErr   error
	clearErr error
}

func (s *stubFavoritesRepo) GetByUser(_ context.Context, _ string) (*domain.FavoriteSet, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.set, nil
}

func (s *stubFavoritesRepo) Put(_ context.Context, _ string, _ domain.FavoriteSet) error {
	return s.putErr
}

func (s *stubFavoritesRepo) Clear(_ context.Context, _ string) error {
	return s.clearErr
}

func newTestAdapter(carts *stubCartRepo, favorites *stubFavoritesRepo) *Adapter {
	return New(NewDeviceStore(), carts, favorites, 3, time.Millisecond, nil)
}

func TestGuestCartRoundTrip(t *testing.T) {
	a := newTestAdapter(&stubCartRepo{}, &stubFavoritesRepo{})
	ctx := context.Background()

	if _, err := a.GetCart(ctx, domain.ScopeGuest, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty store: expected ErrNotFound, got %v", err)
	}

	cart := domain.Cart{Items: []domain.LineItem{{
		ProductID:      "p1",
		VariantKey:     domain.VariantKey("p1", "M", "Black"),
		Quantity:       2,
		UnitPriceCents: 1500,
	}}}
	if err := a.PutCart(ctx, domain.ScopeGuest, "", cart); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := a.GetCart(ctx, domain.ScopeGuest, "")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Scope != domain.ScopeGuest {
		t.Fatalf("expected guest scope, got %q", got.Scope)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart contents: %+v", got.Items)
	}

	if err := a.ClearCart(ctx, domain.ScopeGuest, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := a.GetCart(ctx, domain.ScopeGuest, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("after clear: expected ErrNotFound, got %v", err)
	}
}

func TestGuestMalformedPayloadDiscarded(t *testing.T) {
	a := newTestAdapter(&stubCartRepo{}, &stubFavoritesRepo{})
	ctx := context.Background()

	a.device.put(deviceCartKey, []byte("{not json"))

	if _, err := a.GetCart(ctx, domain.ScopeGuest, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("malformed payload: expected ErrNotFound, got %v", err)
	}
	if _, ok := a.device.get(deviceCartKey); ok {
		t.Fatal("malformed payload should have been removed")
	}

	a.device.put(deviceFavoritesKey, []byte("  "))
	if _, err := a.GetFavorites(ctx, domain.ScopeGuest, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("malformed favorites: expected ErrNotFound, got %v", err)
	}
}

func TestAccountRetryExhaustionReportsNetwork(t *testing.T) {
	carts := &stubCartRepo{getErr: errors.New("connection refused")}
	a := newTestAdapter(carts, &stubFavoritesRepo{})

	_, err := a.GetCart(context.Background(), domain.ScopeAccount, "u1")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if carts.getCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", carts.getCalls)
	}
}

func TestAccountNotFoundIsNotRetried(t *testing.T) {
	carts := &stubCartRepo{getErr: domain.ErrNotFound}
	a := newTestAdapter(carts, &stubFavoritesRepo{})

	_, err := a.GetCart(context.Background(), domain.ScopeAccount, "u1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if carts.getCalls != 1 {
		t.Fatalf("expected a single attempt, got %d", carts.getCalls)
	}
}

func TestAccountPutTransientFailureRecovers(t *testing.T) {
	carts := &stubCartRepo{}
	fail := 2
	carts.putErr = nil
	a := New(NewDeviceStore(), &flakyCartRepo{inner: carts, failures: fail}, &stubFavoritesRepo{}, 3, time.Millisecond, nil)

	err := a.PutCart(context.Background(), domain.ScopeAccount, "u1", domain.Cart{})
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if carts.putCalls != 1 {
		t.Fatalf("expected one successful put, got %d", carts.putCalls)
	}
}

type flakyCartRepo struct {
	inner    *stubCartRepo
	failures int
}

func (f *flakyCartRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return f.inner.GetByUser(ctx, userID)
}

func (f *flakyCartRepo) Put(ctx context.Context, userID string, cart domain.Cart) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("timeout")
	}
	return f.inner.Put(ctx, userID, cart)
}

func (f *flakyCartRepo) Clear(ctx context.Context, userID string) error {
	return f.inner.Clear(ctx, userID)
}

func TestUnknownScopeRejected(t *testing.T) {
	a := newTestAdapter(&stubCartRepo{}, &stubFavoritesRepo{})

	if _, err := a.GetCart(context.Background(), domain.Scope("session"), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
