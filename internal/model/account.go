package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents a card-holding bank account
type Account struct {
	ID             uuid.UUID       `json:"id"`
	CardNumber     string          `json:"card_number"`
	CredentialHash string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MaskedCard returns the card number with all but the last four digits hidden
func (a *Account) MaskedCard() string {
	return MaskCard(a.CardNumber)
}

// MaskCard hides all but the last four characters of a card number.
// It is used for every log line and outbound event that references a card.
func MaskCard(card string) string {
	if len(card) <= 4 {
		return "****"
	}
	masked := make([]byte, len(card))
	for i := range masked {
		if i < len(card)-4 {
			masked[i] = '*'
		} else {
			masked[i] = card[i]
		}
	}
	return string(masked)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}
