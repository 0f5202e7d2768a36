package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"order-enricher/internal/enrich"
	"order-enricher/internal/model"
	"order-enricher/internal/options"
)

// webhookResponse is the JSON structure for webhook acknowledgements.
type webhookResponse struct {
	Success bool   `json:"success"`
	Skipped string `json:"skipped,omitempty"`
}

// webhookFailure is the JSON structure when the note write failed.
type webhookFailure struct {
	Error string `json:"error"`
}

// handleOrderWebhook processes an order-creation webhook: enrich the
// order and write the composed note back. Enrichment failures degrade
// the note silently; only a failed note write fails the request.
func (h *Handler) handleOrderWebhook(w http.ResponseWriter, r *http.Request) {
	order, err := decodeOrder(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.WebhooksReceived.Inc()
	}

	h.logger.Info("order webhook received",
		slog.Int64("order_id", order.ID),
		slog.Int64("customer_id", order.CustomerID()),
		slog.Int("line_items", len(order.LineItems)),
	)

	// No items means nothing to annotate. Acknowledge so the platform
	// does not redeliver, and make no upstream calls at all.
	if len(order.LineItems) == 0 {
		h.logger.Info("order skipped: no line items", slog.Int64("order_id", order.ID))
		if h.metrics != nil {
			h.metrics.WebhooksSkipped.Inc()
		}
		h.writeJSON(w, http.StatusOK, webhookResponse{Success: true, Skipped: "no line items"})
		return
	}

	opts := options.Parse(r.Header.Get(options.Header))
	result, err := h.enricher.Enrich(r.Context(), order, enrich.RequestOptions{
		DisableSample: opts.DisableSample,
		Strategy:      enrich.Strategy(opts.Strategy),
	})
	if err != nil {
		h.logger.Error("order note update failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		h.writeJSON(w, http.StatusInternalServerError, webhookFailure{Error: "failed to update order note"})
		return
	}

	h.logger.Info("order note updated",
		slog.Int64("order_id", order.ID),
		slog.Bool("first_order", result.FirstOrder),
		slog.Bool("sample", result.Sample != ""),
		slog.Int("degradations", len(result.Degradations)),
	)
	h.writeJSON(w, http.StatusOK, webhookResponse{Success: true})
}

// decodeOrder reads the webhook payload. Senders deliver the order
// either at the top level or wrapped under an "order" key; both are
// accepted. Body size is limited to MaxRequestBodySize.
func decodeOrder(r *http.Request) (*model.Order, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, model.NewValidationError("body", "unreadable body")
	}

	var wrapper struct {
		Order *model.Order `json:"order"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, model.NewValidationError("body", "invalid JSON")
	}
	if wrapper.Order != nil {
		return wrapper.Order, nil
	}

	var order model.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, model.NewValidationError("body", "invalid JSON")
	}
	return &order, nil
}
