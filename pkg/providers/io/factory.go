// Package io provides the input/output provider factories for registry
// integration.
package io

import (
	"context"

	"github.com/agentweave/agentweave/pkg/protocol"
)

// InputFactory creates InputProvider instances.
type InputFactory struct{}

// NewInputFactory creates a new factory instance.
func NewInputFactory() protocol.ProviderFactory {
	return &InputFactory{}
}

// Create creates a new InputProvider instance.
func (f *InputFactory) Create(ctx context.Context) (protocol.Provider, error) {
	return NewInputProvider(), nil
}

// ID returns the node type this factory serves.
func (f *InputFactory) ID() string {
	return "input"
}

// Name returns the factory name.
func (f *InputFactory) Name() string {
	return "Input"
}

// Description returns the factory description.
func (f *InputFactory) Description() string {
	return "Seeds the run with caller-supplied initial values."
}

// Schema returns the JSON schema for input node configuration.
func (f *InputFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input_name": map[string]any{
				"type":        "string",
				"description": "Name of the caller-supplied value this node emits. Empty emits all initial values.",
			},
			"default_value": map[string]any{
				"description": "Fallback value when the caller supplies nothing under input_name.",
			},
		},
	}
}

// OutputFactory creates OutputProvider instances.
type OutputFactory struct{}

// NewOutputFactory creates a new factory instance.
func NewOutputFactory() protocol.ProviderFactory {
	return &OutputFactory{}
}

// Create creates a new OutputProvider instance.
func (f *OutputFactory) Create(ctx context.Context) (protocol.Provider, error) {
	return NewOutputProvider(), nil
}

// ID returns the node type this factory serves.
func (f *OutputFactory) ID() string {
	return "output"
}

// Name returns the factory name.
func (f *OutputFactory) Name() string {
	return "Output"
}

// Description returns the factory description.
func (f *OutputFactory) Description() string {
	return "Forwards resolved inputs as a graph result."
}

// Schema returns the JSON schema for output node configuration.
func (f *OutputFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"output_name": map[string]any{
				"type":        "string",
				"description": "Name under which the caller sees this result.",
			},
		},
	}
}
