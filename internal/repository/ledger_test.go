package repository

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"bank-host-api/internal/model"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	ledger, err := NewLedger([]*model.Account{
		{ID: uuid.New(), CardNumber: "1234567890", CredentialHash: "hash-1", Balance: decimal.NewFromInt(1000)},
		{ID: uuid.New(), CardNumber: "0987654321", CredentialHash: "hash-2", Balance: decimal.NewFromInt(5000)},
		{ID: uuid.New(), CardNumber: "1122334455", CredentialHash: "hash-3", Balance: decimal.NewFromInt(3000)},
	})
	require.NoError(t, err)
	return ledger
}

func TestNewLedger_Validation(t *testing.T) {
	tests := []struct {
		name     string
		accounts []*model.Account
		wantErr  error
	}{
		{
			name: "duplicate card",
			accounts: []*model.Account{
				{CardNumber: "1", Balance: decimal.Zero},
				{CardNumber: "1", Balance: decimal.Zero},
			},
			wantErr: ErrAccountAlreadyExists,
		},
		{
			name:     "negative balance",
			accounts: []*model.Account{{CardNumber: "1", Balance: decimal.NewFromInt(-1)}},
			wantErr:  ErrNegativeBalance,
		},
		{
			name:     "missing card",
			accounts: []*model.Account{{Balance: decimal.Zero}},
			wantErr:  ErrMissingCardNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLedger(tt.accounts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLedger_FindByCard(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)

	account, err := ledger.FindByCard(ctx, "1234567890")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", account.CredentialHash)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(1000)))

	// the snapshot is detached from the ledger
	account.Balance = decimal.Zero
	balance, err := ledger.BalanceOf(ctx, "1234567890")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)))

	_, err = ledger.FindByCard(ctx, "0000000000")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = ledger.BalanceOf(ctx, "0000000000")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLedger_ApplyWithdrawal(t *testing.T) {
	tests := []struct {
		name        string
		card        string
		amount      decimal.Decimal
		wantErr     error
		wantBalance decimal.Decimal
	}{
		{
			name:        "partial withdrawal",
			card:        "0987654321",
			amount:      decimal.NewFromInt(1000),
			wantBalance: decimal.NewFromInt(4000),
		},
		{
			name:        "fractional withdrawal",
			card:        "0987654321",
			amount:      decimal.RequireFromString("0.01"),
			wantBalance: decimal.RequireFromString("4999.99"),
		},
		{
			name:        "entire balance",
			card:        "1234567890",
			amount:      decimal.NewFromInt(1000),
			wantBalance: decimal.Zero,
		},
		{
			name:        "insufficient funds",
			card:        "1122334455",
			amount:      decimal.NewFromInt(4000),
			wantErr:     ErrInsufficientFunds,
			wantBalance: decimal.NewFromInt(3000),
		},
		{
			name:        "zero amount",
			card:        "1122334455",
			amount:      decimal.Zero,
			wantErr:     ErrInvalidAmount,
			wantBalance: decimal.NewFromInt(3000),
		},
		{
			name:        "negative amount",
			card:        "1122334455",
			amount:      decimal.NewFromInt(-500),
			wantErr:     ErrInvalidAmount,
			wantBalance: decimal.NewFromInt(3000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ledger := newTestLedger(t)

			newBalance, err := ledger.ApplyWithdrawal(ctx, tt.card, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.True(t, newBalance.Equal(tt.wantBalance), "got %s want %s", newBalance, tt.wantBalance)
			}

			balance, err := ledger.BalanceOf(ctx, tt.card)
			require.NoError(t, err)
			assert.True(t, balance.Equal(tt.wantBalance), "got %s want %s", balance, tt.wantBalance)
		})
	}

	t.Run("unknown card", func(t *testing.T) {
		_, err := newTestLedger(t).ApplyWithdrawal(context.Background(), "0000000000", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestLedger_ConcurrentWithdrawals(t *testing.T) {
	ctx := context.Background()
	ledger := newTestLedger(t)

	const workers = 64
	amount := decimal.NewFromInt(30) // 1000 / 30 -> 33 withdrawals fit

	var (
		approved int64
		g        errgroup.Group
	)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := ledger.ApplyWithdrawal(ctx, "1234567890", amount)
			switch {
			case err == nil:
				atomic.AddInt64(&approved, 1)
				return nil
			case errors.Is(err, ErrInsufficientFunds):
				return nil
			default:
				return err
			}
		})
		// reads on another account run alongside
		g.Go(func() error {
			_, err := ledger.BalanceOf(ctx, "0987654321")
			return err
		})
	}
	require.NoError(t, g.Wait())

	balance, err := ledger.BalanceOf(ctx, "1234567890")
	require.NoError(t, err)

	assert.Equal(t, int64(33), approved)
	assert.False(t, balance.IsNegative())
	assert.True(t, balance.Equal(decimal.NewFromInt(10)), "got %s", balance)
}

func TestLedger_Len(t *testing.T) {
	assert.Equal(t, 3, newTestLedger(t).Len())
}
