// Package registry maps node types to their provider factories and
// validates node configurations against the factories' schemas.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/protocol"
)

// Registry holds the provider factories available to the engine.
type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.ProviderFactory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.ProviderFactory),
	}
}

// Register adds a provider factory, replacing any previous factory for the
// same node type.
func (r *Registry) Register(factory protocol.ProviderFactory) {
	r.factories[factory.ID()] = factory
}

// CreateProvider creates a provider for the given node type.
func (r *Registry) CreateProvider(ctx context.Context, nodeType models.NodeType) (protocol.Provider, error) {
	factory, ok := r.factories[string(nodeType)]
	if !ok {
		return nil, fmt.Errorf("node type %q not registered", nodeType)
	}

	return factory.Create(ctx)
}

// Available returns the registered node types.
func (r *Registry) Available() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}

	return types
}

// ValidateNodeConfig checks a node's config against the JSON schema its
// factory declares. Schema violations are reported as a *ConfigError.
func (r *Registry) ValidateNodeConfig(node *models.Node) error {
	// Control-flow nodes have no factory; their config is checked by
	// graph validation and the engine.
	if node.IsControlFlow() {
		return nil
	}

	factory, ok := r.factories[string(node.Type)]
	if !ok {
		return fmt.Errorf("node type %q not registered", node.Type)
	}

	schema := factory.Schema()
	if schema == nil {
		return nil
	}

	config := node.Config
	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate config for node %s: %w", node.ID, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return &protocol.ConfigError{
			Key:    string(node.Type),
			Reason: strings.Join(details, "; "),
		}
	}

	return nil
}
