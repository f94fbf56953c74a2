package favorites

import (
	"context"
	"errors"
	"testing"

	"ando-storefront/internal/domain"
)

type stubPersister struct {
	stored   map[domain.Scope]*domain.FavoriteSet
	putErr   error
	putCalls int
	lastPut  domain.FavoriteSet
}

func newStubPersister() *stubPersister {
	return &stubPersister{stored: make(map[domain.Scope]*domain.FavoriteSet)}
}

func (s *stubPersister) GetFavorites(_ context.Context, scope domain.Scope, _ string) (*domain.FavoriteSet, error) {
	set, ok := s.stored[scope]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return set, nil
}

func (s *stubPersister) PutFavorites(_ context.Context, scope domain.Scope, _ string, set domain.FavoriteSet) error {
	s.putCalls++
	s.lastPut = set
	if s.putErr != nil {
		return s.putErr
	}
	copied := set
	s.stored[scope] = &copied
	return nil
}

func (s *stubPersister) ClearFavorites(_ context.Context, scope domain.Scope, _ string) error {
	delete(s.stored, scope)
	return nil
}

func TestToggleOnOff(t *testing.T) {
	persist := newStubPersister()
	store := New(persist)
	ctx := context.Background()

	on, err := store.Toggle(ctx, "tee-1")
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on || !store.Contains("tee-1") {
		t.Fatal("expected tee-1 to be a favorite after first toggle")
	}

	off, err := store.Toggle(ctx, "tee-1")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if off || store.Contains("tee-1") {
		t.Fatal("expected tee-1 removed after second toggle")
	}
	if persist.putCalls != 2 {
		t.Fatalf("expected both toggles persisted, got %d", persist.putCalls)
	}
}

func TestToggleKeepsOrder(t *testing.T) {
	store := New(newStubPersister())
	ctx := context.Background()

	store.Toggle(ctx, "a")
	store.Toggle(ctx, "b")
	store.Toggle(ctx, "c")
	store.Toggle(ctx, "b")

	got := store.List()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected order after removal: %v", got)
	}
}

func TestTogglePersistFailureKeepsInMemoryChange(t *testing.T) {
	persist := newStubPersister()
	persist.putErr = errors.New("remote down")
	store := New(persist)

	on, err := store.Toggle(context.Background(), "tee-1")
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if !on || !store.Contains("tee-1") {
		t.Fatal("in-memory toggle should survive the failed persist")
	}
}

func TestBindAccountLoadsAccountFavorites(t *testing.T) {
	persist := newStubPersister()
	persist.stored[domain.ScopeAccount] = &domain.FavoriteSet{ProductIDs: []string{"x", "y"}}
	store := New(persist)
	ctx := context.Background()

	store.Toggle(ctx, "guest-only")
	if err := store.BindAccount(ctx, "u1"); err != nil {
		t.Fatalf("bind: %v", err)
	}

	got := store.List()
	if len(got) != 2 || got[0] != "x" {
		t.Fatalf("expected account favorites after bind, got %v", got)
	}
	if store.Contains("guest-only") {
		t.Fatal("guest view should be replaced on bind")
	}
}

func TestToggleValidation(t *testing.T) {
	store := New(newStubPersister())

	if _, err := store.Toggle(context.Background(), " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
