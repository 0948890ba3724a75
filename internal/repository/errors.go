package repository

import "errors"

// Repository errors
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrMissingCardNumber    = errors.New("card number is required")
	ErrNegativeBalance      = errors.New("balance cannot be negative")
	ErrLedgerInvariant      = errors.New("ledger invariant violated")
)
