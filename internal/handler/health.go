package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"bank-host-api/internal/model"
)

// LedgerStats is the part of the ledger the health check reads
type LedgerStats interface {
	Len() int
}

type HealthHandler struct {
	ledger  LedgerStats
	version string
	commit  string
	started time.Time
}

func NewHealthHandler(ledger LedgerStats, version, commit string) *HealthHandler {
	return &HealthHandler{
		ledger:  ledger,
		version: version,
		commit:  commit,
		started: time.Now(),
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := model.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Commit:    h.commit,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Ledger:    h.checkLedger(),
	}

	// an empty ledger can approve nothing
	statusCode := http.StatusOK
	if response.Ledger.Status != "healthy" {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}

func (h *HealthHandler) checkLedger() model.LedgerHealth {
	ledgerHealth := model.LedgerHealth{
		Status: "unhealthy",
	}

	if h.ledger == nil {
		return ledgerHealth
	}

	ledgerHealth.Accounts = h.ledger.Len()
	if ledgerHealth.Accounts > 0 {
		ledgerHealth.Status = "healthy"
	}
	return ledgerHealth
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, model.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
