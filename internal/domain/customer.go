package domain

import "time"

// Customer is a registered storefront account.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	DateOfBirth  string    `json:"dateOfBirth,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
