// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/agentweave/agentweave/pkg/config"
	"github.com/agentweave/agentweave/pkg/registry"
)

// NewRegistry creates a provider registry with every built-in node type
// registered.
func NewRegistry(logger *slog.Logger, cfg *config.Config) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultProviders(cfg)

	return reg
}
