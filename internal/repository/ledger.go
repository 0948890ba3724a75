package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bank-host-api/internal/model"
)

// Ledger is the in-memory store of accounts keyed by card number.
// Accounts are provisioned once in NewLedger and never added or removed
// afterwards, so the index is read without locking. Every balance change goes
// through the owning entry's mutex.
type Ledger struct {
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	account model.Account
}

// NewLedger creates a ledger holding copies of the given accounts
func NewLedger(accounts []*model.Account) (*Ledger, error) {
	entries := make(map[string]*entry, len(accounts))
	for _, account := range accounts {
		if account.CardNumber == "" {
			return nil, fmt.Errorf("account %s: %w", account.ID, ErrMissingCardNumber)
		}
		if account.Balance.IsNegative() {
			return nil, fmt.Errorf("account %s: %w", account.MaskedCard(), ErrNegativeBalance)
		}
		if _, exists := entries[account.CardNumber]; exists {
			return nil, fmt.Errorf("account %s: %w", account.MaskedCard(), ErrAccountAlreadyExists)
		}
		entries[account.CardNumber] = &entry{account: *account}
	}

	return &Ledger{entries: entries}, nil
}

// FindByCard retrieves a snapshot of the account holding the given card
func (l *Ledger) FindByCard(ctx context.Context, cardNumber string) (*model.Account, error) {
	e, ok := l.entries[cardNumber]
	if !ok {
		return nil, ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	account := e.account
	return &account, nil
}

// BalanceOf returns the current balance of the account holding the given card
func (l *Ledger) BalanceOf(ctx context.Context, cardNumber string) (decimal.Decimal, error) {
	e, ok := l.entries[cardNumber]
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.account.Balance, nil
}

// ApplyWithdrawal debits amount from the account holding the given card.
// The balance check and the debit happen under the same lock, so two
// concurrent withdrawals can never both pass the check against a stale balance.
func (l *Ledger) ApplyWithdrawal(ctx context.Context, cardNumber string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	e, ok := l.entries[cardNumber]
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.account.Balance.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}

	newBalance := e.account.Balance.Sub(amount)
	if newBalance.IsNegative() {
		return decimal.Zero, fmt.Errorf("account %s: %w", e.account.MaskedCard(), ErrLedgerInvariant)
	}

	e.account.Balance = newBalance
	e.account.UpdatedAt = time.Now().UTC()

	return newBalance, nil
}

// Len returns the number of provisioned accounts
func (l *Ledger) Len() int {
	return len(l.entries)
}
