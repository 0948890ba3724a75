// Package client talks to the bank host the way an ATM does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bank-host-api/internal/model"
)

// ErrRejected is returned when the bank host refuses a message before authorizing it
var ErrRejected = errors.New("request rejected by bank host")

// transactionMessage is the wire form of a request; amount is always a JSON number
type transactionMessage struct {
	CardNumber          string                `json:"cardNumber"`
	EncryptedCredential string                `json:"encryptedCredential"`
	Type                model.TransactionType `json:"type"`
	Amount              json.Number           `json:"amount,omitempty"`
}

func newTransactionMessage(req *model.TransactionRequest) transactionMessage {
	msg := transactionMessage{
		CardNumber:          req.CardNumber,
		EncryptedCredential: req.EncryptedCredential,
		Type:                req.Type,
	}
	if req.Amount != nil {
		msg.Amount = json.Number(req.Amount.String())
	}
	return msg
}

// Client posts transaction messages to a bank host
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client for the bank host at endpoint. A nil httpClient gets a
// default one with a ten second timeout.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: httpClient,
	}
}

// Authorize sends req and returns the bank host's decision along with the HTTP status.
// Approvals and declines are both results; any other status is an error wrapping ErrRejected.
func (c *Client) Authorize(ctx context.Context, req *model.TransactionRequest) (*model.AuthorizationResult, int, error) {
	body, err := json.Marshal(newTransactionMessage(req))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/authorize", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to reach bank host: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusUnauthorized:
		var result model.AuthorizationResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
		return &result, resp.StatusCode, nil
	default:
		var errResp model.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
		}
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d: %s (%s)", ErrRejected, resp.StatusCode, errResp.Error, errResp.Code)
	}
}
