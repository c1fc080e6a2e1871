package bank

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory [Store] seeded with demo accounts. Used for
// local runs and tests when no database is configured.
//
// Safe for concurrent use.
type MemoryStore struct {
	mu           sync.Mutex
	accounts     map[string]*Account
	order        []string
	transactions map[string][]Transaction
	nextTxn      int
}

// NewMemoryStore returns a MemoryStore seeded with the demo dataset: a
// savings and a current account with a short transaction history each.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		accounts:     make(map[string]*Account),
		transactions: make(map[string][]Transaction),
		nextTxn:      1,
	}
	now := time.Now()

	s.seedAccount(Account{
		ID:      "acc-savings",
		Name:    "Primary Savings",
		Number:  "XXXX1234",
		Type:    AccountSavings,
		Balance: 12_50_000_00, // 12,50,000.00 INR
	}, []Transaction{
		{Description: "Salary credit", Direction: DirectionCredit, Amount: 85_000_00, Timestamp: now.AddDate(0, 0, -2)},
		{Description: "Electricity bill", Direction: DirectionDebit, Amount: 2_340_00, Timestamp: now.AddDate(0, 0, -5)},
		{Description: "UPI transfer to Ravi", Direction: DirectionDebit, Amount: 5_000_00, Timestamp: now.AddDate(0, 0, -9)},
	})
	s.seedAccount(Account{
		ID:      "acc-current",
		Name:    "Business Current",
		Number:  "XXXX5678",
		Type:    AccountCurrent,
		Balance: 3_20_000_00,
	}, []Transaction{
		{Description: "Vendor payment", Direction: DirectionDebit, Amount: 48_000_00, Timestamp: now.AddDate(0, 0, -1)},
		{Description: "Invoice settlement", Direction: DirectionCredit, Amount: 1_10_000_00, Timestamp: now.AddDate(0, 0, -4)},
	})
	return s
}

func (s *MemoryStore) seedAccount(a Account, txns []Transaction) {
	acc := a
	s.accounts[acc.ID] = &acc
	s.order = append(s.order, acc.ID)
	for _, t := range txns {
		t.ID = s.newTxnID()
		t.AccountID = acc.ID
		s.transactions[acc.ID] = append(s.transactions[acc.ID], t)
	}
}

func (s *MemoryStore) newTxnID() string {
	id := fmt.Sprintf("txn-%04d", s.nextTxn)
	s.nextTxn++
	return id
}

// Accounts implements [Store].
func (s *MemoryStore) Accounts(_ context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.accounts[id])
	}
	return out, nil
}

// Account implements [Store].
func (s *MemoryStore) Account(_ context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("account %q: %w", id, ErrNotFound)
	}
	return *acc, nil
}

// Transactions implements [Store]. Entries are returned newest first.
func (s *MemoryStore) Transactions(_ context.Context, accountID string, limit int) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return nil, fmt.Errorf("account %q: %w", accountID, ErrNotFound)
	}

	txns := s.transactions[accountID]
	out := make([]Transaction, len(txns))
	copy(out, txns)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SubmitTransfer implements [Store]. The debit and the ledger entry are
// applied atomically under the store mutex.
func (s *MemoryStore) SubmitTransfer(_ context.Context, t Transfer) (Transaction, error) {
	if t.Amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[t.FromAccountID]
	if !ok {
		return Transaction{}, fmt.Errorf("account %q: %w", t.FromAccountID, ErrNotFound)
	}
	if acc.Balance < t.Amount {
		return Transaction{}, ErrInsufficientFunds
	}

	acc.Balance -= t.Amount
	desc := "Transfer to " + t.RecipientName
	if t.RecipientName == "" {
		desc = "Transfer to account " + t.RecipientAccount
	}
	txn := Transaction{
		ID:          s.newTxnID(),
		AccountID:   acc.ID,
		Description: desc,
		Direction:   DirectionDebit,
		Amount:      t.Amount,
		Timestamp:   time.Now(),
	}
	s.transactions[acc.ID] = append(s.transactions[acc.ID], txn)
	return txn, nil
}

// Ping implements [Store]. The in-memory store is always reachable.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }
