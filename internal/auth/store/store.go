package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/authcore/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrInvalidData   = errors.New("store: invalid data")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep entity concerns separate; lookups take
// search-criteria value objects so queries stay parameterized end to end.
type Store interface {
	Identities() Identities
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Identities() Identities
	RefreshTokens() RefreshTokens
}

// IdentitySearch selects identities. Exactly one field should be set; an
// empty search matches nothing.
type IdentitySearch struct {
	ID           string
	Email        string
	OneTimeToken string
}

// RefreshTokenSearch selects refresh token records.
type RefreshTokenSearch struct {
	Token  string
	UserID string
}

type Identities interface {
	// Create inserts a new identity. A duplicate email is ErrAlreadyExists.
	Create(ctx context.Context, id domain.Identity) error

	// FindOne returns the single identity matching the search criteria, or
	// ErrNotFound.
	FindOne(ctx context.Context, search IdentitySearch) (domain.Identity, error)

	// Update rewrites the mutable identity fields and bumps updated_at.
	Update(ctx context.Context, id domain.Identity) error

	// Delete removes an identity and, via schema cascade, its refresh
	// tokens. ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// ExistsByEmail reports whether any identity has the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type RefreshTokens interface {
	// Create stores a new refresh token record.
	Create(ctx context.Context, t domain.RefreshToken) error

	// FindOne returns the record matching the search, or ErrNotFound.
	FindOne(ctx context.Context, search RefreshTokenSearch) (domain.RefreshToken, error)

	// FindAllByUser returns a user's records newest first.
	FindAllByUser(ctx context.Context, userID string) ([]domain.RefreshToken, error)

	// Delete removes a record by exact token string. ErrNotFound when the
	// token was already gone.
	Delete(ctx context.Context, token string) error

	// PruneUser deletes all but the keep most recently created records for
	// the user.
	PruneUser(ctx context.Context, userID string, keep int) error

	// DeleteOlderThan removes records whose creation time predates the
	// cutoff, regardless of user. Housekeeping only.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error
}
