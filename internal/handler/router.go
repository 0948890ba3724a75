package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"bank-host-api/internal/model"
)

// NewRouter wires the bank host's HTTP surface
func NewRouter(transactionHandler *TransactionHandler, healthHandler *HealthHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recoverer(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "Not found", model.ErrCodeInvalidInput)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", model.ErrCodeInvalidInput)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)

	r.Post("/v1/authorize", transactionHandler.Authorize)
	// route used by older ATM builds
	r.Post("/authorize", transactionHandler.Authorize)

	return r
}
