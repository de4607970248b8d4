package db

import (
	"context"
	"database/sql"
)

// DB wraps the shared sql handle so packages depend on this type
// instead of database/sql directly.
type DB struct {
	*sql.DB
}

const schemaMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    google_id text NOT NULL,
    email text NOT NULL,
    name text NOT NULL,
    picture text,
    is_active boolean NOT NULL DEFAULT true,
    last_login_at timestamptz,
    actions text[] NOT NULL DEFAULT '{}',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_google_id_unique
ON users (google_id);
`

// RunMigration applies the schema. The unique index on google_id is what
// resolves concurrent first-login races in the user store.
func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaMigration)
	return err
}
