// Package store provides persistence for user accounts.
package store

import (
	"context"
	"errors"

	"github.com/abaanfida/unixora/internal/model/account"
)

// ErrDuplicateEmail is returned when creating an account whose email is
// already registered.
var ErrDuplicateEmail = errors.New("email already exists")

// Accounts is the repository backing the auth service.
type Accounts interface {
	// Create persists a new account. Returns ErrDuplicateEmail if the
	// email is taken.
	Create(ctx context.Context, acc *account.Account) error

	// FindByEmail retrieves an account by lowercased email. Returns
	// (nil, nil) when no account exists.
	FindByEmail(ctx context.Context, email string) (*account.Account, error)

	// Close releases the underlying resources.
	Close() error
}
