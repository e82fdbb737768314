package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on every start; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credit_accounts (
		user_id        TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		balance        BIGINT NOT NULL CHECK (balance >= 0),
		lifetime_usage BIGINT NOT NULL DEFAULT 0 CHECK (lifetime_usage >= 0),
		initial_grant  BIGINT NOT NULL DEFAULT 0,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS credit_reservations (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES credit_accounts(user_id) ON DELETE CASCADE,
		amount         BIGINT NOT NULL CHECK (amount > 0),
		status         TEXT NOT NULL CHECK (status IN ('pending', 'committed', 'released')),
		transaction_id TEXT,
		created_at     TIMESTAMPTZ NOT NULL,
		settled_at     TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_reservations_pending
		ON credit_reservations (created_at) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS credit_transactions (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES credit_accounts(user_id) ON DELETE CASCADE,
		amount         BIGINT NOT NULL,
		kind           TEXT NOT NULL CHECK (kind IN ('purchase', 'usage', 'bonus', 'refund')),
		description    TEXT NOT NULL DEFAULT '',
		reservation_id TEXT UNIQUE REFERENCES credit_reservations(id),
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_transactions_user
		ON credit_transactions (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS products (
		id                     TEXT PRIMARY KEY,
		user_id                TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_name           TEXT NOT NULL,
		category               TEXT NOT NULL DEFAULT '',
		brand                  TEXT NOT NULL DEFAULT '',
		price                  BIGINT,
		keywords               TEXT[] NOT NULL DEFAULT '{}',
		status                 TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'published')),
		generated_title        TEXT NOT NULL DEFAULT '',
		generated_alternatives TEXT[] NOT NULL DEFAULT '{}',
		generated_description  TEXT NOT NULL DEFAULT '',
		generated_bullet_specs TEXT[] NOT NULL DEFAULT '{}',
		generated_tags         TEXT[] NOT NULL DEFAULT '{}',
		created_at             TIMESTAMPTZ NOT NULL,
		updated_at             TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_user
		ON products (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS generation_logs (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		product_id      TEXT REFERENCES products(id) ON DELETE SET NULL,
		generation_type TEXT NOT NULL,
		credits_used    BIGINT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
