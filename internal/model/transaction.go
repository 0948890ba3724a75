package model

import (
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType identifies the operation an ATM asks the bank host to authorize
type TransactionType string

const (
	TransactionTypeWithdrawal     TransactionType = "WITHDRAWAL"
	TransactionTypeBalanceInquiry TransactionType = "BALANCE_INQUIRY"
)

// TransactionTypes returns the closed set of supported transaction types.
// The authorization engine refuses to start unless it handles every one of them.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeWithdrawal,
		TransactionTypeBalanceInquiry,
	}
}

// Decline and approval messages returned to the ATM
const (
	MessageAccountNotFound    = "Account not found"
	MessageInvalidCredential  = "Invalid credential"
	MessageInvalidAmount      = "Invalid withdrawal amount"
	MessageInsufficientFunds  = "Insufficient funds"
	MessageUnknownType        = "Unknown transaction type"
	MessageInquiryApproved    = "Balance inquiry approved"
	MessageWithdrawalApproved = "Withdrawal approved"
)

// TransactionRequest represents an authorization request sent by an ATM
type TransactionRequest struct {
	CardNumber          string           `json:"cardNumber" valid:"required"`
	EncryptedCredential string           `json:"encryptedCredential" valid:"required"`
	Type                TransactionType  `json:"type" valid:"required"`
	Amount              *decimal.Decimal `json:"amount,omitempty" valid:"-"`
}

// Validate checks that the fields required to route the request are present.
// Business rules such as the withdrawal amount are enforced by the authorization engine.
func (r *TransactionRequest) Validate() error {
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return &ValidationError{
			Field:   "request",
			Message: err.Error(),
		}
	}
	return nil
}

// AuthorizationResult represents the bank host's answer to a TransactionRequest
type AuthorizationResult struct {
	Approved   bool             `json:"approved"`
	Message    string           `json:"message"`
	NewBalance *decimal.Decimal `json:"newBalance,omitempty"`
}

// Approve builds an approved result carrying the given balance
func Approve(message string, balance decimal.Decimal) *AuthorizationResult {
	return &AuthorizationResult{
		Approved:   true,
		Message:    message,
		NewBalance: &balance,
	}
}

// Decline builds a declined result; declines never carry a balance
func Decline(message string) *AuthorizationResult {
	return &AuthorizationResult{
		Approved: false,
		Message:  message,
	}
}

// WithdrawalEvent is published after a withdrawal has been committed to the ledger
type WithdrawalEvent struct {
	ID         uuid.UUID       `json:"id"`
	AccountID  uuid.UUID       `json:"account_id"`
	CardNumber string          `json:"card_number"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
	CreatedAt  time.Time       `json:"created_at"`
}
