package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"bank-host-api/internal/model"
)

// Encoder turns a PIN typed at the ATM into its wire form
type Encoder interface {
	Encode(secret string) (string, error)
}

// Scenario is one customer interaction at the ATM
type Scenario struct {
	Card   string
	PIN    string
	Type   model.TransactionType
	Amount *decimal.Decimal
}

// DemoScenarios returns the walkthrough run by `atm demo`, in order
func DemoScenarios() []Scenario {
	amount := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	return []Scenario{
		{Card: "1234567890", PIN: "1234", Type: model.TransactionTypeBalanceInquiry},
		{Card: "0987654321", PIN: "4567", Type: model.TransactionTypeWithdrawal, Amount: amount(1000)},
		{Card: "1122334455", PIN: "7890", Type: model.TransactionTypeWithdrawal, Amount: amount(4000)},
		{Card: "0000000000", PIN: "0000", Type: model.TransactionTypeBalanceInquiry},
		{Card: "1234567890", PIN: "0000", Type: model.TransactionTypeWithdrawal, Amount: amount(100)},
		{Card: "0987654321", PIN: "4567", Type: model.TransactionTypeWithdrawal, Amount: amount(-500)},
	}
}

// Session drives ATM interactions and prints what the customer would see
type Session struct {
	client  *Client
	encoder Encoder
	out     io.Writer
}

func NewSession(client *Client, encoder Encoder, out io.Writer) *Session {
	return &Session{
		client:  client,
		encoder: encoder,
		out:     out,
	}
}

// Run performs one interaction. The returned error covers local and transport
// failures; a declined transaction is a result, not an error.
func (s *Session) Run(ctx context.Context, sc Scenario) (*model.AuthorizationResult, error) {
	fmt.Fprintf(s.out, "\n-- [ATM] starting new session for card %s --\n", model.MaskCard(sc.Card))
	defer fmt.Fprintln(s.out, "-- [ATM] session ended --")

	wire, err := s.encoder.Encode(sc.PIN)
	if err != nil {
		fmt.Fprintf(s.out, "[ATM] error during session: %v\n", err)
		return nil, fmt.Errorf("failed to encode pin: %w", err)
	}

	fmt.Fprintln(s.out, "[ATM] sending transaction message to bank host")
	result, _, err := s.client.Authorize(ctx, &model.TransactionRequest{
		CardNumber:          sc.Card,
		EncryptedCredential: wire,
		Type:                sc.Type,
		Amount:              sc.Amount,
	})
	if err != nil {
		fmt.Fprintf(s.out, "[ATM] error during session: %v\n", err)
		return nil, err
	}

	fmt.Fprintf(s.out, "[ATM] received response: %s\n", result.Message)
	if result.Approved && result.NewBalance != nil {
		fmt.Fprintf(s.out, "[ATM] your new balance is: %s\n", result.NewBalance.StringFixed(2))
	}

	return result, nil
}

// RunAll runs every scenario in order. A failed session is reported and the
// next one still runs; the failures come back joined.
func (s *Session) RunAll(ctx context.Context, scenarios []Scenario) error {
	var errs []error
	for i, sc := range scenarios {
		if _, err := s.Run(ctx, sc); err != nil {
			errs = append(errs, fmt.Errorf("session %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}
