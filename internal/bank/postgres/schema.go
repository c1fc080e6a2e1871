package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlAccounts = `
CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT         PRIMARY KEY,
    name          TEXT         NOT NULL,
    number        TEXT         NOT NULL,
    type          TEXT         NOT NULL,
    balance_paise BIGINT       NOT NULL DEFAULT 0 CHECK (balance_paise >= 0),
    created_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

const ddlTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id           BIGSERIAL    PRIMARY KEY,
    account_id   TEXT         NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
    description  TEXT         NOT NULL,
    direction    TEXT         NOT NULL CHECK (direction IN ('credit', 'debit')),
    amount_paise BIGINT       NOT NULL CHECK (amount_paise > 0),
    timestamp    TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_timestamp
    ON transactions (account_id, timestamp DESC);
`

// Migrate creates or ensures all required tables exist. It is idempotent and
// safe to call on every application start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		ddlAccounts,
		ddlTransactions,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bank migrate: %w", err)
		}
	}
	return nil
}
