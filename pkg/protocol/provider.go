// Package protocol defines the interfaces and contracts for provider
// adapters, the uniform boundary between the execution engine and external
// capabilities (LLM completion, HTTP calls, data transforms).
package protocol

import (
	"context"
)

// Provider executes one node against an external capability. The config map
// is the node's configuration with every variable reference already
// resolved; inputs carry the active upstream outputs keyed by output key.
// The returned map holds the node's outputs keyed by output key.
//
// Providers report failures through the error return, never by panicking.
// Failures of the external capability should be a *ProviderError and
// configuration problems a *ConfigError so the engine can classify them.
type Provider interface {
	Execute(ctx context.Context, config map[string]any, inputs map[string]any) (map[string]any, error)
}

// ProviderFactory creates provider instances and describes the node type
// they serve.
type ProviderFactory interface {
	// Create creates a provider instance.
	Create(ctx context.Context) (Provider, error)

	// ID returns the node type this provider executes.
	ID() string

	// Name returns the human-readable name for this provider.
	Name() string

	// Description returns a description of what this provider does.
	Description() string

	// Schema returns the JSON schema for node configs of this type.
	Schema() map[string]any
}
