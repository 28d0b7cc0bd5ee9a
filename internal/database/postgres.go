package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func NewPostgres(url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return db, nil
}

// migrate creates tables and indexes idempotently.
func migrate(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id              UUID PRIMARY KEY,
			name            TEXT NOT NULL DEFAULT '',
			campus_id       TEXT NOT NULL DEFAULT '',
			is_premium      BOOLEAN NOT NULL DEFAULT FALSE,
			premium_expires TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS listings (
			id           UUID PRIMARY KEY,
			user_id      UUID NOT NULL REFERENCES users(id),
			title        TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL DEFAULT '',
			price        NUMERIC(20,2) NOT NULL DEFAULT 0,
			contact_info TEXT NOT NULL DEFAULT '',
			is_featured  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id                UUID PRIMARY KEY,
			user_id           UUID NOT NULL REFERENCES users(id),
			title             TEXT NOT NULL DEFAULT '',
			is_partnered      BOOLEAN NOT NULL DEFAULT FALSE,
			sponsorship_level TEXT,
			partnership_fee   NUMERIC(20,2),
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS business_ads (
			id          UUID PRIMARY KEY,
			user_id     UUID NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			monthly_fee NUMERIC(20,2) NOT NULL DEFAULT 0,
			start_date  TIMESTAMPTZ NOT NULL,
			end_date    TIMESTAMPTZ NOT NULL,
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id              UUID PRIMARY KEY,
			type            VARCHAR(50) NOT NULL,
			amount          NUMERIC(20,2) NOT NULL CHECK (amount >= 0),
			currency        VARCHAR(3) NOT NULL,
			status          VARCHAR(20) NOT NULL,
			description     TEXT NOT NULL DEFAULT '',
			user_id         UUID NOT NULL REFERENCES users(id),
			listing_id      UUID REFERENCES listings(id),
			event_id        UUID REFERENCES events(id),
			business_ad_id  UUID REFERENCES business_ads(id),
			commission_rate NUMERIC(5,2),
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user_id
			ON transactions(user_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_once_per_target
			ON transactions(user_id, listing_id, type)
			WHERE type IN ('CONTACT_UNLOCK', 'SPONSORED_LISTING')`,
		`CREATE TABLE IF NOT EXISTS wallets (
			id         UUID PRIMARY KEY,
			user_id    UUID NOT NULL UNIQUE REFERENCES users(id),
			balance    NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			currency   VARCHAR(3) NOT NULL,
			is_active  BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS wallet_transactions (
			id             UUID PRIMARY KEY,
			wallet_id      UUID NOT NULL REFERENCES wallets(id),
			type           VARCHAR(10) NOT NULL,
			amount         NUMERIC(20,2) NOT NULL CHECK (amount > 0),
			balance        NUMERIC(20,2) NOT NULL CHECK (balance >= 0),
			description    TEXT NOT NULL DEFAULT '',
			reference_id   TEXT,
			reference_type TEXT,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wallet_transactions_wallet_id
			ON wallet_transactions(wallet_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_wallet_transactions_refund_once
			ON wallet_transactions(wallet_id, reference_id)
			WHERE type = 'REFUND'`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
