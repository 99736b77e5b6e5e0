// Package transform provides the transform provider factory for registry
// integration.
package transform

import (
	"context"

	"github.com/agentweave/agentweave/pkg/protocol"
)

// Factory creates transform Provider instances.
type Factory struct{}

// NewFactory creates a new factory instance.
func NewFactory() protocol.ProviderFactory {
	return &Factory{}
}

// Create creates a new Provider instance.
func (f *Factory) Create(ctx context.Context) (protocol.Provider, error) {
	return NewProvider(), nil
}

// ID returns the node type this factory serves.
func (f *Factory) ID() string {
	return "transform"
}

// Name returns the factory name.
func (f *Factory) Name() string {
	return "Transform"
}

// Description returns the factory description.
func (f *Factory) Description() string {
	return "Applies a declared, pure transformation to upstream data: field extraction, regex matching, string templating or arithmetic."
}

// Schema returns the JSON schema for transform node configuration.
func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"transform_type": map[string]any{
				"type":        "string",
				"description": "Kind of transformation to apply",
				"enum":        []string{"jq", "regex", "template", "expression"},
			},
			"expression": map[string]any{
				"type":        "string",
				"description": "Transformation expression. Supports {{node_id.output_key}} references.",
				"examples": []string{
					".items[0].name",
					`\d+`,
					"Hello {{name}}!",
					"{{double.result}} * 2",
				},
			},
		},
		"required": []string{"expression"},
	}
}
