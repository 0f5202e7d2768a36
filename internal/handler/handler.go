// Package handler provides HTTP handlers for the order-note enricher.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"order-enricher/internal/enrich"
	"order-enricher/internal/metrics"
	"order-enricher/internal/model"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	enricher *enrich.Enricher
	metrics  *metrics.Registry
	logger   *slog.Logger
}

// New creates a Handler. The metrics registry may be nil (tests).
func New(e *enrich.Enricher, m *metrics.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		enricher: e,
		metrics:  m,
		logger:   logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns. The webhook lives at the root
// path because that is where stores point their order-creation webhook;
// /webhooks/orders is an alias for setups that prefer a named path.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /{$}", h.handleOrderWebhook)
	mux.HandleFunc("POST /webhooks/orders", h.handleOrderWebhook)

	// MCP transport - enrichment tools using the official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)

	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

// healthResponse is the JSON structure for health checks.
type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from
// APIError if present. Uses errors.As() to unwrap error chains.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB
