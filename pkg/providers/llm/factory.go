// Package llm provides the LLM provider factory for registry integration.
package llm

import (
	"context"
	"log/slog"

	"github.com/agentweave/agentweave/pkg/protocol"
)

// Factory creates LLM Provider instances.
type Factory struct {
	completers map[string]Completer
	logger     *slog.Logger
}

// NewFactory creates a new factory instance over the given completers.
func NewFactory(completers map[string]Completer, logger *slog.Logger) protocol.ProviderFactory {
	return &Factory{completers: completers, logger: logger}
}

// Create creates a new Provider instance.
func (f *Factory) Create(ctx context.Context) (protocol.Provider, error) {
	return NewProvider(f.completers, f.logger), nil
}

// ID returns the node type this factory serves.
func (f *Factory) ID() string {
	return "llm"
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "LLM"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Sends a resolved prompt to a hosted language model (OpenAI or Anthropic) and emits the response text."
}

// Schema returns the JSON schema for LLM node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"provider": map[string]any{
				"type":        "string",
				"description": "LLM provider to call",
				"enum":        []string{"openai", "anthropic"},
			},
			"model": map[string]any{
				"type":        "string",
				"description": "Model identifier, e.g. gpt-4o or claude-sonnet-4-5",
			},
			"prompt_template": map[string]any{
				"type":        "string",
				"description": "Prompt text. Supports {{node_id.output_key}} references.",
			},
			"system": map[string]any{
				"type":        "string",
				"description": "System message",
			},
			"temperature": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 2,
			},
			"max_tokens": map[string]any{
				"type":    "number",
				"minimum": 1,
			},
			"json_output": map[string]any{
				"type":        "boolean",
				"description": "Parse the response as JSON (repairing common model artifacts) and emit it under the 'json' output key.",
			},
		},
		"required": []string{"provider", "model", "prompt_template"},
	}
}
