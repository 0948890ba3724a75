package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"bank-host-api/internal/model"
)

// maxRequestBytes bounds the size of a transaction message
const maxRequestBytes = 1 << 16

// Authorizer decides transaction requests
type Authorizer interface {
	Authorize(ctx context.Context, req *model.TransactionRequest) (*model.AuthorizationResult, error)
}

// TransactionHandler handles ATM transaction messages
type TransactionHandler struct {
	authorizer Authorizer
	logger     *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(authorizer Authorizer, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		authorizer: authorizer,
		logger:     logger,
	}
}

// Authorize handles POST /v1/authorize
func (h *TransactionHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		writeErrorResponse(w, http.StatusBadRequest, "Content-Type must be application/json", model.ErrCodeInvalidInput)
		return
	}

	var req model.TransactionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid transaction message format", model.ErrCodeInvalidInput)
		return
	}

	if err := req.Validate(); err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			writeErrorResponse(w, http.StatusBadRequest, validationErr.Message, model.ErrCodeValidation)
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, err.Error(), model.ErrCodeValidation)
		return
	}

	result, err := h.authorizer.Authorize(r.Context(), &req)
	if err != nil {
		h.logger.Error("authorization failed",
			"request_id", middleware.GetReqID(r.Context()),
			"card", model.MaskCard(req.CardNumber),
			"type", req.Type,
			"err", err,
		)
		writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", model.ErrCodeInternalError)
		return
	}

	statusCode := http.StatusOK
	if !result.Approved {
		statusCode = http.StatusUnauthorized
	}

	writeJSON(w, statusCode, result)
}
