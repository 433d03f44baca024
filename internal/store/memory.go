package store

import (
	"context"
	"sync"

	"github.com/abaanfida/unixora/internal/model/account"
)

// MemoryStore implements Accounts with a map, for tests and local runs
// without a database file.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]account.Account // keyed by email
}

// NewMemory returns an empty in-memory account repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]account.Account)}
}

// Create persists an account, returning ErrDuplicateEmail on a taken email.
func (s *MemoryStore) Create(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acc.Email]; exists {
		return ErrDuplicateEmail
	}
	s.accounts[acc.Email] = *acc
	return nil
}

// FindByEmail retrieves an account by email, (nil, nil) when absent.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[email]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
