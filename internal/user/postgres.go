package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lfdantoni/dashboard-ai/internal/db"
)

const userColumns = `
	id, google_id, email, name, picture,
	is_active, last_login_at, actions, created_at, updated_at`

// PostgresStore is the canonical Store implementation. Concurrent
// first-login races are resolved by the unique index on google_id, not by
// in-process locking.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByGoogleID(ctx context.Context, googleID string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE google_id = $1
	`, googleID)

	return scanUser(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE id = $1
	`, uid)

	return scanUser(row)
}

func (s *PostgresStore) Create(ctx context.Context, n NewUser) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (google_id, email, name, picture, is_active, last_login_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), true, NOW())
		RETURNING`+userColumns+`
	`, n.GoogleID, n.Email, n.Name, n.Picture)

	return scanUser(row)
}

func (s *PostgresStore) Update(ctx context.Context, id string, u Update) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	sets := []string{"updated_at = NOW()"}
	args := []any{uid}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Picture != nil {
		add("picture", sql.NullString{String: *u.Picture, Valid: *u.Picture != ""})
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}
	if u.LastLoginAt != nil {
		add("last_login_at", *u.LastLoginAt)
	}
	if u.Actions != nil {
		add("actions", pq.Array(*u.Actions))
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING`+userColumns+`
	`, args...)

	return scanUser(row)
}

func (s *PostgresStore) FindOrCreate(ctx context.Context, n NewUser) (*User, error) {
	return findOrCreate(ctx, s, n)
}

// findOrCreateOps is the slice of the store the find-or-create orchestration
// runs against; split out so the race handling is testable without a
// database.
type findOrCreateOps interface {
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)
	Create(ctx context.Context, n NewUser) (*User, error)
	refreshLogin(ctx context.Context, id string, n NewUser) (*User, error)
}

func findOrCreate(ctx context.Context, s findOrCreateOps, n NewUser) (*User, error) {
	existing, err := s.FindByGoogleID(ctx, n.GoogleID)
	switch {
	case err == nil:
		return s.refreshLogin(ctx, existing.ID, n)
	case errors.Is(err, ErrNotFound):
		// first login for this google id
	default:
		return nil, err
	}

	created, err := s.Create(ctx, n)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrDuplicateGoogleID) {
		return nil, err
	}

	// Lost the race against a concurrent first login; the record exists
	// now, so fall back to the update path.
	existing, err = s.FindByGoogleID(ctx, n.GoogleID)
	if err != nil {
		return nil, err
	}
	return s.refreshLogin(ctx, existing.ID, n)
}

// refreshLogin re-syncs mutable identity fields from the latest claims and
// stamps the login time.
func (s *PostgresStore) refreshLogin(ctx context.Context, id string, n NewUser) (*User, error) {
	now := time.Now()
	return s.Update(ctx, id, Update{
		Name:        &n.Name,
		Picture:     &n.Picture,
		Email:       &n.Email,
		LastLoginAt: &now,
	})
}

func (s *PostgresStore) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *PostgresStore) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *PostgresStore) setActive(ctx context.Context, id string, active bool) error {
	_, err := s.Update(ctx, id, Update{IsActive: &active})
	return err
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return count, nil
}

func (s *PostgresStore) FindAllActive(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE is_active = true
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u         User
		id        uuid.UUID
		picture   sql.NullString
		lastLogin sql.NullTime
		actions   pq.StringArray
	)

	err := row.Scan(
		&id,
		&u.GoogleID,
		&u.Email,
		&u.Name,
		&picture,
		&u.IsActive,
		&lastLogin,
		&actions,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateGoogleID, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	u.ID = id.String()
	u.Picture = picture.String
	if lastLogin.Valid {
		u.LastLoginAt = lastLogin.Time
	}
	u.Actions = []string(actions)
	return &u, nil
}
