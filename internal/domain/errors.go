package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation indicates malformed caller input; retrying cannot succeed.
	ErrValidation = errors.New("validation failed")
	// ErrExpired indicates a promo code or discount outside its validity window.
	ErrExpired = errors.New("expired")
	// ErrConflict indicates the backend rejected a reconciling write.
	ErrConflict = errors.New("conflict")
	// ErrNetwork indicates a transient I/O failure that survived retries.
	ErrNetwork = errors.New("network failure")
)
