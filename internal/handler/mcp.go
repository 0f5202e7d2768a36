// MCP transport handler using the official MCP Go SDK.
// Exposes the enrichment pipeline as tools so operators and agents can
// dry-run note composition against live store data without writing to
// an order.
package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"order-enricher/internal/enrich"
	"order-enricher/internal/model"
)

// === MCP Tool Input/Output Types ===

// OrderInput is the shared input schema for enrichment tools.
type OrderInput struct {
	Order         model.Order `json:"order" jsonschema:"the order to process,required"`
	DisableSample bool        `json:"disable_sample,omitempty" jsonschema:"suppress the sample recommendation"`
	Strategy      string      `json:"strategy,omitempty" jsonschema:"sample selection strategy: ranked or random"`
}

// NotePreview is the output of preview_order_note and enrich_order.
type NotePreview struct {
	Note         string   `json:"note"`
	FirstOrder   bool     `json:"first_order"`
	Sample       string   `json:"sample,omitempty"`
	Degradations []string `json:"degradations,omitempty"`
	Written      bool     `json:"written"`
}

// SampleOutput is the output of recommend_sample.
type SampleOutput struct {
	Sample string `json:"sample,omitempty"`
	Found  bool   `json:"found"`
}

// NewMCPServer creates an MCP server with enrichment tools registered.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "order-enricher",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Order note enricher. Use these tools to preview or apply " +
				"the fulfillment note composed for an order, or to ask for a " +
				"sample recommendation on its own.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_order_note",
		Description: "Compose the fulfillment note for an order without writing it back.",
	}, h.mcpPreviewNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "enrich_order",
		Description: "Run the full enrichment pipeline and write the composed note to the order.",
	}, h.mcpEnrichOrder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recommend_sample",
		Description: "Recommend a sample product for an order based on the customer's purchase affinity.",
	}, h.mcpRecommendSample)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpPreviewNote(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input OrderInput,
) (*mcp.CallToolResult, *NotePreview, error) {
	result := h.enricher.Preview(ctx, &input.Order, enrich.RequestOptions{
		DisableSample: input.DisableSample,
		Strategy:      enrich.Strategy(input.Strategy),
	})
	return nil, previewFromEnrichment(result), nil
}

func (h *Handler) mcpEnrichOrder(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input OrderInput,
) (*mcp.CallToolResult, *NotePreview, error) {
	result, err := h.enricher.Enrich(ctx, &input.Order, enrich.RequestOptions{
		DisableSample: input.DisableSample,
		Strategy:      enrich.Strategy(input.Strategy),
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, previewFromEnrichment(result), nil
}

func (h *Handler) mcpRecommendSample(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input OrderInput,
) (*mcp.CallToolResult, *SampleOutput, error) {
	sample, err := h.enricher.RecommendSample(ctx, &input.Order, enrich.Strategy(input.Strategy))
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &SampleOutput{Sample: sample, Found: sample != ""}, nil
}

// previewFromEnrichment maps the pipeline result to the tool output.
func previewFromEnrichment(result *enrich.Enrichment) *NotePreview {
	preview := &NotePreview{
		Note:       result.Note,
		FirstOrder: result.FirstOrder,
		Sample:     result.Sample,
		Written:    result.Written,
	}
	for _, d := range result.Degradations {
		preview.Degradations = append(preview.Degradations, d.Stage+": "+d.Reason)
	}
	return preview
}

// mcpError converts pipeline errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	if apiErr, ok := err.(*model.APIError); ok {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
