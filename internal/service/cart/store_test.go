package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ando-storefront/internal/domain"
)

type stubPersister struct {
	stored    map[domain.Scope]*domain.Cart
	getErr    error
	putErr    error
	clearErr  error
	putCalls  int
	lastScope domain.Scope
	lastUser  string
}

func newStubPersister() *stubPersister {
	return &stubPersister{stored: make(map[domain.Scope]*domain.Cart)}
}

func (s *stubPersister) GetCart(_ context.Context, scope domain.Scope, _ string) (*domain.Cart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	cart, ok := s.stored[scope]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cart, nil
}

func (s *stubPersister) PutCart(_ context.Context, scope domain.Scope, userID string, cart domain.Cart) error {
	s.putCalls++
	s.lastScope = scope
	s.lastUser = userID
	if s.putErr != nil {
		return s.putErr
	}
	copied := cart
	s.stored[scope] = &copied
	return nil
}

func (s *stubPersister) ClearCart(_ context.Context, scope domain.Scope, _ string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	delete(s.stored, scope)
	return nil
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	persist := newStubPersister()
	store := New(persist)
	ctx := context.Background()

	if _, err := store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if persist.putCalls != 2 {
		t.Fatalf("expected every mutation persisted, got %d puts", persist.putCalls)
	}
}

func TestDifferentVariantsAreSeparateLines(t *testing.T) {
	store := New(newStubPersister())
	ctx := context.Background()

	store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)
	cart, err := store.AddItem(ctx, "tee-1", "Logo Tee", "L", "Black", 1999)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("expected two lines for distinct sizes, got %d", len(cart.Items))
	}
	if cart.Items[0].VariantKey == cart.Items[1].VariantKey {
		t.Fatal("variant keys should differ")
	}
}

func TestTotals(t *testing.T) {
	store := New(newStubPersister())
	ctx := context.Background()

	store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)
	store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)
	store.AddItem(ctx, "hoodie-1", "Zip Hoodie", "L", "Grey", 4500)

	if got := store.TotalItems(); got != 3 {
		t.Fatalf("expected 3 items, got %d", got)
	}
	if got := store.TotalPriceCents(); got != 2*1999+4500 {
		t.Fatalf("unexpected total: %d", got)
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	store := New(newStubPersister())
	ctx := context.Background()

	cart, _ := store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)
	key := cart.Items[0].VariantKey

	cart, err := store.UpdateQuantity(ctx, key, 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
}

func TestUpdateQuantityUnknownLine(t *testing.T) {
	store := New(newStubPersister())

	_, err := store.UpdateQuantity(context.Background(), "ghost/m/black", 3)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPersistFailureKeepsInMemoryChange(t *testing.T) {
	persist := newStubPersister()
	persist.putErr = errors.New("remote down")
	store := New(persist)

	cart, err := store.AddItem(context.Background(), "tee-1", "Logo Tee", "M", "Black", 1999)
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if len(cart.Items) != 1 {
		t.Fatal("in-memory change should survive the failed persist")
	}
	if store.TotalItems() != 1 {
		t.Fatal("store should still hold the added line")
	}
}

func TestBindAccountLoadsAccountCart(t *testing.T) {
	persist := newStubPersister()
	persist.stored[domain.ScopeAccount] = &domain.Cart{Items: []domain.LineItem{{
		ProductID:      "tee-9",
		VariantKey:     domain.VariantKey("tee-9", "S", "White"),
		Quantity:       4,
		UnitPriceCents: 1200,
	}}}
	store := New(persist)
	ctx := context.Background()

	store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)

	if err := store.BindAccount(ctx, "u1"); err != nil {
		t.Fatalf("bind: %v", err)
	}

	cart := store.Snapshot()
	if cart.Scope != domain.ScopeAccount {
		t.Fatalf("expected account scope, got %q", cart.Scope)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "tee-9" {
		t.Fatalf("expected account cart to replace guest view, got %+v", cart.Items)
	}

	store.AddItem(ctx, "tee-2", "Crew Tee", "M", "Black", 2100)
	if persist.lastScope != domain.ScopeAccount || persist.lastUser != "u1" {
		t.Fatalf("mutations after bind must persist to the account scope, got %q/%q", persist.lastScope, persist.lastUser)
	}
}

// scopeCheckingPersister fails the test if a snapshot ever lands in a
// scope other than the one it was taken under.
type scopeCheckingPersister struct {
	mu       sync.Mutex
	mismatch string
}

func (s *scopeCheckingPersister) GetCart(_ context.Context, _ domain.Scope, _ string) (*domain.Cart, error) {
	return nil, domain.ErrNotFound
}

func (s *scopeCheckingPersister) PutCart(_ context.Context, scope domain.Scope, _ string, cart domain.Cart) error {
	if cart.Scope != scope {
		s.mu.Lock()
		s.mismatch = fmt.Sprintf("cart from scope %q persisted into scope %q", cart.Scope, scope)
		s.mu.Unlock()
	}
	return nil
}

func (s *scopeCheckingPersister) ClearCart(_ context.Context, _ domain.Scope, _ string) error {
	return nil
}

func TestMutationPersistsToMutationScope(t *testing.T) {
	persist := &scopeCheckingPersister{}
	store := New(persist)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			store.AddItem(ctx, "tee-1", "Tee", "m", "black", 1999)
		}
	}()
	if err := store.BindAccount(ctx, "u1"); err != nil {
		t.Fatalf("bind account: %v", err)
	}
	<-done

	persist.mu.Lock()
	defer persist.mu.Unlock()
	if persist.mismatch != "" {
		t.Fatal(persist.mismatch)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	store := New(newStubPersister())
	ctx := context.Background()

	store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)
	before := store.Snapshot()
	store.AddItem(ctx, "tee-1", "Logo Tee", "M", "Black", 1999)

	if before.Items[0].Quantity != 1 {
		t.Fatalf("snapshot mutated by later writes: %+v", before.Items[0])
	}
}

func TestAddItemValidation(t *testing.T) {
	store := New(newStubPersister())

	if _, err := store.AddItem(context.Background(), "  ", "x", "M", "Black", 100); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank product id: expected ErrValidation, got %v", err)
	}
	if _, err := store.AddItem(context.Background(), "tee-1", "x", "M", "Black", -1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative price: expected ErrValidation, got %v", err)
	}
}
