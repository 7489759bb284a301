package accounts

import (
	"context"

	"github.com/tech-arch1tect/accounts/services/apperr"
)

var (
	ErrDuplicateKey     = apperr.New(apperr.DuplicateKey, "username or email already exists")
	ErrNotFound         = apperr.New(apperr.NotFound, "account not found")
	ErrConcurrentUpdate = apperr.New(apperr.Conflict, "account was modified concurrently")
)

// Store is the keyed repository of accounts.
//
// Find methods return (nil, false, nil) when nothing matches. Create and Save
// are the authoritative uniqueness check: a second claim on a username or
// email fails with ErrDuplicateKey rather than overwriting.
type Store interface {
	Create(ctx context.Context, account *Account) (*Account, error)
	FindByID(ctx context.Context, id uint) (*Account, bool, error)
	FindByEmail(ctx context.Context, email string) (*Account, bool, error)
	FindByUsername(ctx context.Context, username string) (*Account, bool, error)
	FindByVerificationCode(ctx context.Context, code string) (*Account, bool, error)

	// Save persists changes to an existing account. It fails with ErrNotFound
	// if the id is gone and ErrConcurrentUpdate if the account changed since
	// it was read.
	Save(ctx context.Context, account *Account) error
}
