package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateGoogleID signals a lost first-login race: another request
	// created the record between lookup and insert. Retryable once as a
	// lookup.
	ErrDuplicateGoogleID = errors.New("google id already registered")

	// ErrStorageUnavailable wraps every backing-store failure.
	ErrStorageUnavailable = errors.New("user storage unavailable")
)

// NewUser carries the claim-derived attributes for creation and for
// refreshing an existing record on login.
type NewUser struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// Update holds partial field updates; nil fields are left untouched.
type Update struct {
	Name        *string
	Picture     *string
	Email       *string
	IsActive    *bool
	LastLoginAt *time.Time
	Actions     *[]string
}

// Store owns all reads and writes of user records.
type Store interface {
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, n NewUser) (*User, error)
	Update(ctx context.Context, id string, u Update) (*User, error)

	// FindOrCreate is the only entry point the login flow uses. It is
	// idempotent with respect to record count: repeated calls for the same
	// GoogleID refresh last_login_at, name and picture but never duplicate
	// the record. Every call writes, even when nothing changed, so
	// last_login_at reflects each successful authentication.
	FindOrCreate(ctx context.Context, n NewUser) (*User, error)

	Deactivate(ctx context.Context, id string) error
	Activate(ctx context.Context, id string) error

	CountUsers(ctx context.Context) (int, error)
	FindAllActive(ctx context.Context) ([]*User, error)
}
