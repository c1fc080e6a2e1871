// Package bank holds the demo banking data layer behind the voice assistant:
// accounts, transactions, and transfers. The [Store] interface has two
// implementations, an in-memory store seeded with demo data for local runs
// and a PostgreSQL store (internal/bank/postgres) for deployments.
package bank

import (
	"context"
	"errors"
	"time"
)

// Amounts are stored in paise (1/100 INR) to avoid float arithmetic on money.

var (
	// ErrNotFound is returned when an account or transaction does not exist.
	ErrNotFound = errors.New("bank: not found")

	// ErrInsufficientFunds is returned when a transfer exceeds the source
	// account balance.
	ErrInsufficientFunds = errors.New("bank: insufficient funds")

	// ErrInvalidAmount is returned for zero or negative transfer amounts.
	ErrInvalidAmount = errors.New("bank: invalid amount")
)

// AccountType distinguishes the demo account kinds.
type AccountType string

const (
	AccountSavings AccountType = "savings"
	AccountCurrent AccountType = "current"
)

// Account is one customer account.
type Account struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Number  string      `json:"number"`
	Type    AccountType `json:"type"`
	Balance int64       `json:"balance_paise"`
}

// Direction marks a transaction as money in or money out.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Transaction is one ledger entry on an account.
type Transaction struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Description string    `json:"description"`
	Direction   Direction `json:"direction"`
	Amount      int64     `json:"amount_paise"`
	Timestamp   time.Time `json:"timestamp"`
}

// Transfer is a request to move money out of an account.
type Transfer struct {
	FromAccountID    string `json:"from_account_id"`
	RecipientName    string `json:"recipient_name"`
	RecipientAccount string `json:"recipient_account"`
	Amount           int64  `json:"amount_paise"`
	Note             string `json:"note,omitempty"`
}

// Store is the account data access layer.
type Store interface {
	// Accounts lists all accounts.
	Accounts(ctx context.Context) ([]Account, error)

	// Account returns one account by ID. Returns [ErrNotFound] when absent.
	Account(ctx context.Context, id string) (Account, error)

	// Transactions returns the most recent ledger entries for an account,
	// newest first. limit <= 0 means no limit.
	Transactions(ctx context.Context, accountID string, limit int) ([]Transaction, error)

	// SubmitTransfer debits the source account and records the resulting
	// transaction. Returns [ErrInsufficientFunds] when the balance does not
	// cover the amount and [ErrInvalidAmount] for non-positive amounts.
	SubmitTransfer(ctx context.Context, t Transfer) (Transaction, error)

	// Ping verifies the backing store is reachable. Used by readiness checks.
	Ping(ctx context.Context) error
}
