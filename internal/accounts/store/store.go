package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/vidtab/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale is returned by compare-and-swap writes when the stored value
	// no longer matches what the caller expected.
	ErrStale = errors.New("store: stale value")
)

// Store is the persistence root for the accounts service. Each driver under
// drivers/ implements it.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error
	Ping(ctx context.Context) error
	Close() error
}

// Accounts persists user accounts. Usernames and emails are stored exactly as
// given; callers normalise them first.
type Accounts interface {
	// Create inserts a new account. It returns ErrAlreadyExists when the
	// username or email is taken. ID and timestamps are filled in when empty.
	Create(ctx context.Context, a domain.Account) (domain.Account, error)

	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetByUsernameOrEmail returns the first account matching either
	// non-empty argument.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (domain.Account, error)

	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateCoverImage(ctx context.Context, id, url string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// SetRefreshToken overwrites the refresh slot unconditionally. An empty
	// hash clears it.
	SetRefreshToken(ctx context.Context, id, hash string) error

	// SwapRefreshToken replaces the refresh slot only if it still holds
	// expected. It returns ErrStale otherwise, including when the account is
	// gone, so that of two concurrent rotations exactly one succeeds.
	SwapRefreshToken(ctx context.Context, id, expected, next string) error
}
