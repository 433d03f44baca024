package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abaanfida/unixora/internal/model/account"
)

func testAccount(id, email string) *account.Account {
	now := time.Now().UTC().Truncate(time.Second)
	return &account.Account{
		ID:           id,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "$2a$04$notarealhash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// runAccountsContract exercises the behavior every Accounts implementation
// must share.
func runAccountsContract(t *testing.T, accounts Accounts) {
	ctx := context.Background()

	acc, err := accounts.FindByEmail(ctx, "missing@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if acc != nil {
		t.Fatalf("expected nil for an absent email, got %+v", acc)
	}

	created := testAccount("id-1", "ada@example.com")
	if err := accounts.Create(ctx, created); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := accounts.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found == nil {
		t.Fatal("created account not found")
	}
	if found.ID != created.ID || found.PasswordHash != created.PasswordHash {
		t.Fatalf("stored account differs: %+v", found)
	}
	if !found.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at mismatch: %v != %v", found.CreatedAt, created.CreatedAt)
	}

	err = accounts.Create(ctx, testAccount("id-2", "ada@example.com"))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	runAccountsContract(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	runAccountsContract(t, store)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.db")

	store, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Create(context.Background(), testAccount("id-1", "ada@example.com")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	store.Close()

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	found, err := reopened.FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found == nil {
		t.Fatal("account lost across reopen")
	}
}
