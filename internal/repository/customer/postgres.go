package customer

import (
	"context"
	"errors"
	"strings"

	"ando-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (email, password_hash, first_name, last_name, date_of_birth)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, email, password_hash, first_name, last_name, date_of_birth, created_at
`
	row := r.pool.QueryRow(ctx, q,
		strings.ToLower(strings.TrimSpace(c.Email)),
		c.PasswordHash,
		c.FirstName,
		c.LastName,
		c.DateOfBirth,
	)
	out, err := scanCustomer(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, first_name, last_name, date_of_birth, created_at
FROM customers
WHERE email = $1
LIMIT 1
`
	out, err := scanCustomer(r.pool.QueryRow(ctx, q, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, first_name, last_name, date_of_birth, created_at
FROM customers
WHERE id = $1
LIMIT 1
`
	out, err := scanCustomer(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var firstName, lastName, dateOfBirth *string
	if err := row.Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&firstName,
		&lastName,
		&dateOfBirth,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	if firstName != nil {
		c.FirstName = *firstName
	}
	if lastName != nil {
		c.LastName = *lastName
	}
	if dateOfBirth != nil {
		c.DateOfBirth = *dateOfBirth
	}
	return &c, nil
}
