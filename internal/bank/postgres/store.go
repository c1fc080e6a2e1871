// Package postgres provides a PostgreSQL-backed implementation of the
// [bank.Store] interface.
//
// All operations share a single [pgxpool.Pool]. [Migrate] installs the schema
// idempotently on startup, so a fresh database needs no manual setup.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhvanibank/dhvani/internal/bank"
)

// Compile-time interface check.
var _ bank.Store = (*Store)(nil)

// Store is the PostgreSQL-backed account store. All methods are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store, establishes a connection pool to the PostgreSQL
// database at dsn, and runs [Migrate] to ensure the schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("bank store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bank store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bank store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping implements [bank.Store].
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Accounts implements [bank.Store].
func (s *Store) Accounts(ctx context.Context) ([]bank.Account, error) {
	const q = `
		SELECT id, name, number, type, balance_paise
		FROM   accounts
		ORDER  BY created_at`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("bank store: list accounts: %w", err)
	}
	accounts, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, fmt.Errorf("bank store: list accounts: %w", err)
	}
	return accounts, nil
}

// Account implements [bank.Store].
func (s *Store) Account(ctx context.Context, id string) (bank.Account, error) {
	const q = `
		SELECT id, name, number, type, balance_paise
		FROM   accounts
		WHERE  id = $1`

	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return bank.Account{}, fmt.Errorf("bank store: get account: %w", err)
	}
	acc, err := pgx.CollectOneRow(rows, scanAccount)
	if errors.Is(err, pgx.ErrNoRows) {
		return bank.Account{}, fmt.Errorf("account %q: %w", id, bank.ErrNotFound)
	}
	if err != nil {
		return bank.Account{}, fmt.Errorf("bank store: get account: %w", err)
	}
	return acc, nil
}

// Transactions implements [bank.Store]. Entries are returned newest first.
func (s *Store) Transactions(ctx context.Context, accountID string, limit int) ([]bank.Transaction, error) {
	if _, err := s.Account(ctx, accountID); err != nil {
		return nil, err
	}

	q := `
		SELECT id::text, account_id, description, direction, amount_paise, timestamp
		FROM   transactions
		WHERE  account_id = $1
		ORDER  BY timestamp DESC`
	args := []any{accountID}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("bank store: list transactions: %w", err)
	}
	txns, err := pgx.CollectRows(rows, scanTransaction)
	if err != nil {
		return nil, fmt.Errorf("bank store: list transactions: %w", err)
	}
	return txns, nil
}

// SubmitTransfer implements [bank.Store]. The debit and the ledger entry run
// in one transaction; a concurrent transfer on the same account cannot
// overdraw it because the balance check and update share a row lock.
func (s *Store) SubmitTransfer(ctx context.Context, t bank.Transfer) (bank.Transaction, error) {
	if t.Amount <= 0 {
		return bank.Transaction{}, bank.ErrInvalidAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return bank.Transaction{}, fmt.Errorf("bank store: begin transfer: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx,
		`SELECT balance_paise FROM accounts WHERE id = $1 FOR UPDATE`,
		t.FromAccountID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return bank.Transaction{}, fmt.Errorf("account %q: %w", t.FromAccountID, bank.ErrNotFound)
	}
	if err != nil {
		return bank.Transaction{}, fmt.Errorf("bank store: lock account: %w", err)
	}
	if balance < t.Amount {
		return bank.Transaction{}, bank.ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance_paise = balance_paise - $2 WHERE id = $1`,
		t.FromAccountID, t.Amount,
	); err != nil {
		return bank.Transaction{}, fmt.Errorf("bank store: debit account: %w", err)
	}

	desc := "Transfer to " + t.RecipientName
	if t.RecipientName == "" {
		desc = "Transfer to account " + t.RecipientAccount
	}

	var txn bank.Transaction
	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (account_id, description, direction, amount_paise)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, account_id, description, direction, amount_paise, timestamp`,
		t.FromAccountID, desc, bank.DirectionDebit, t.Amount,
	).Scan(&txn.ID, &txn.AccountID, &txn.Description, &txn.Direction, &txn.Amount, &txn.Timestamp)
	if err != nil {
		return bank.Transaction{}, fmt.Errorf("bank store: record transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return bank.Transaction{}, fmt.Errorf("bank store: commit transfer: %w", err)
	}
	return txn, nil
}

func scanAccount(row pgx.CollectableRow) (bank.Account, error) {
	var a bank.Account
	err := row.Scan(&a.ID, &a.Name, &a.Number, &a.Type, &a.Balance)
	return a, err
}

func scanTransaction(row pgx.CollectableRow) (bank.Transaction, error) {
	var t bank.Transaction
	err := row.Scan(&t.ID, &t.AccountID, &t.Description, &t.Direction, &t.Amount, &t.Timestamp)
	return t, err
}
