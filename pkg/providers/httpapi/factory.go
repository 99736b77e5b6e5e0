// Package httpapi provides the HTTP request provider factory for registry
// integration.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/agentweave/agentweave/pkg/protocol"
)

// Factory creates HTTP API Provider instances.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a new factory instance.
func NewFactory(logger *slog.Logger) protocol.ProviderFactory {
	return &Factory{logger: logger}
}

// Create creates a new Provider instance.
func (f *Factory) Create(ctx context.Context) (protocol.Provider, error) {
	return NewProvider(f.logger), nil
}

// ID returns the node type this factory serves.
func (f *Factory) ID() string {
	return "api"
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "API"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Issues an HTTP request against an arbitrary API. Non-2xx responses are data unless strict mode is enabled."
}

// Schema returns the JSON schema for API node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Request URL. Supports {{node_id.output_key}} references.",
			},
			"method": map[string]any{
				"type": "string",
				"enum": []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"},
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Request headers",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Request body. Supports references.",
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
				"minimum":     1,
			},
			"strict": map[string]any{
				"type":        "boolean",
				"description": "Treat non-2xx responses as node failures",
			},
			"retries": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"attempts": map[string]any{"type": "number", "minimum": 1},
					"delay":    map[string]any{"type": "number", "minimum": 0},
				},
			},
		},
		"required": []string{"url", "method"},
	}
}
