package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"ando-storefront/internal/domain"
	tokenrepo "ando-storefront/internal/repository/token"
)

type stubCustomerRepo struct {
	byEmail   map[string]*domain.Customer
	createErr error
	created   []domain.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{byEmail: make(map[string]*domain.Customer)}
}

func (s *stubCustomerRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, ok := s.byEmail[c.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	c.ID = "cust-1"
	c.CreatedAt = time.Now().UTC()
	s.created = append(s.created, c)
	s.byEmail[c.Email] = &c
	return &c, nil
}

func (s *stubCustomerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	c, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *stubCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	for _, c := range s.byEmail {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubDiscountRepo struct {
	created   []domain.UserDiscount
	createErr error
}

func (s *stubDiscountRepo) ListByUser(_ context.Context, _ string) ([]domain.UserDiscount, error) {
	return s.created, nil
}

func (s *stubDiscountRepo) Create(_ context.Context, d domain.UserDiscount) (*domain.UserDiscount, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	d.ID = "disc-1"
	s.created = append(s.created, d)
	return &d, nil
}

func (s *stubDiscountRepo) MarkConsumed(_ context.Context, _ string) error {
	return nil
}

type memTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (m *memTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, ok := m.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	m.tokens[t.Token] = t
	return nil
}

func (m *memTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *memTokenRepo) Delete(_ context.Context, token string) error {
	delete(m.tokens, token)
	return nil
}

func newTestService() (*Service, *stubCustomerRepo, *stubDiscountRepo) {
	customers := newStubCustomerRepo()
	discounts := &stubDiscountRepo{}
	return New(customers, discounts, newMemTokenRepo()), customers, discounts
}

func validSignup() SignupInput {
	return SignupInput{Email: "Jane@Example.com", Password: "Secret123", FirstName: "Jane"}
}

func TestSignupGrantsFirstOrderDiscount(t *testing.T) {
	svc, customers, discounts := newTestService()

	created, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if created.Email != "jane@example.com" {
		t.Fatalf("email should be normalized, got %q", created.Email)
	}
	if created.PasswordHash == "Secret123" {
		t.Fatal("password must be hashed")
	}
	if len(customers.created) != 1 {
		t.Fatalf("expected one customer, got %d", len(customers.created))
	}

	if len(discounts.created) != 1 {
		t.Fatalf("expected first-order discount granted, got %d", len(discounts.created))
	}
	d := discounts.created[0]
	if d.Type != domain.DiscountFirstOrder || d.Percent != 5 {
		t.Fatalf("unexpected discount: %+v", d)
	}
	if d.ValidUntil == nil || !d.ValidUntil.After(d.ValidFrom) {
		t.Fatalf("discount needs a validity window: %+v", d)
	}
}

func TestSignupToleratesExistingDiscount(t *testing.T) {
	svc, _, discounts := newTestService()
	discounts.createErr = domain.ErrAlreadyExists

	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("an already granted discount must not fail signup: %v", err)
	}
}

func TestSignupPasswordRules(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"}
	for _, pw := range cases {
		in := validSignup()
		in.Password = pw
		if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("password %q: expected ErrValidation, got %v", pw, err)
		}
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), validSignup()); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLoginAndTokenLookup(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	c, access, refresh, err := svc.Login(ctx, "jane@example.com", "Secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" || access == refresh {
		t.Fatal("expected distinct non-empty tokens")
	}

	found, err := svc.LookupByToken(ctx, access)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != c.ID {
		t.Fatalf("lookup returned wrong customer: %s vs %s", found.ID, c.ID)
	}

	// Refresh tokens are not access tokens.
	if _, err := svc.LookupByToken(ctx, refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not act as access token, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, validSignup()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "jane@example.com", "WrongPass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}
