// Package io provides the input and output boundary adapters for agent
// graph execution. Input nodes seed the run with the caller-supplied
// initial values; output nodes forward their resolved inputs as graph
// results.
package io

import (
	"context"
)

// InputProvider seeds the execution context from caller-supplied initial
// values. For input nodes the engine passes those initial values as the
// adapter's inputs map.
type InputProvider struct{}

// NewInputProvider creates an input adapter.
func NewInputProvider() *InputProvider {
	return &InputProvider{}
}

// Execute emits the caller-supplied values. When the node names a specific
// value via "input_name", only that value is emitted (falling back to the
// configured "default_value" when the caller supplied none); otherwise the
// entire initial value map becomes the node's outputs.
func (p *InputProvider) Execute(ctx context.Context, config map[string]any, inputs map[string]any) (map[string]any, error) {
	if name, ok := config["input_name"].(string); ok && name != "" {
		value, ok := inputs[name]
		if !ok {
			value = config["default_value"]
		}

		return map[string]any{name: value}, nil
	}

	outputs := make(map[string]any, len(inputs))
	for k, v := range inputs {
		outputs[k] = v
	}

	return outputs, nil
}

// OutputProvider forwards resolved inputs as the node's single output,
// marking them as graph results.
type OutputProvider struct{}

// NewOutputProvider creates an output adapter.
func NewOutputProvider() *OutputProvider {
	return &OutputProvider{}
}

// Execute forwards the node's input value under the "result" key. With a
// single upstream value the value itself is forwarded; with several, the
// whole input map is.
func (p *OutputProvider) Execute(ctx context.Context, config map[string]any, inputs map[string]any) (map[string]any, error) {
	if v, ok := inputs["input"]; ok {
		return map[string]any{"result": v}, nil
	}

	if len(inputs) == 1 {
		for _, v := range inputs {
			return map[string]any{"result": v}, nil
		}
	}

	return map[string]any{"result": inputs}, nil
}
