package model

import "time"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Version   string       `json:"version"`
	Commit    string       `json:"commit,omitempty"`
	Uptime    string       `json:"uptime"`
	Ledger    LedgerHealth `json:"ledger"`
}

// LedgerHealth reports the state of the in-memory account ledger
type LedgerHealth struct {
	Status   string `json:"status"`
	Accounts int    `json:"accounts"`
}

// Common error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeInvalidInput  = "INVALID_INPUT"
)
