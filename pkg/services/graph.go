package services

import (
	"context"
	"fmt"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/persistence"
)

// ErrGraphNotFound is returned when a graph is not found.
var ErrGraphNotFound = persistence.ErrGraphNotFound

// Graph manages stored graph definitions.
type Graph struct {
	persistence persistence.Persistence
}

// NewGraph creates a new graph service.
func NewGraph(persistence persistence.Persistence) *Graph {
	return &Graph{
		persistence: persistence,
	}
}

// HealthCheck checks the health of the persistence layer.
func (g *Graph) HealthCheck(ctx context.Context) (string, bool) {
	if g.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := g.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every stored graph.
func (g *Graph) List(ctx context.Context) ([]*models.Graph, error) {
	graphs, err := g.persistence.Graphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	return graphs, nil
}

// Get returns one graph by ID.
func (g *Graph) Get(ctx context.Context, id string) (*models.Graph, error) {
	return g.persistence.GraphByID(ctx, id)
}

// Create validates and stores a new graph.
func (g *Graph) Create(ctx context.Context, graph *models.Graph) (*models.Graph, error) {
	if graph == nil {
		return nil, ErrGraphNil
	}

	if graph.Name == "" {
		return nil, ErrGraphNameRequired
	}

	if len(graph.Nodes) == 0 {
		return nil, ErrNodesRequired
	}

	if err := graph.Validate(); err != nil {
		return nil, &ServiceError{Op: "Create", Message: err.Error(), Err: ErrInvalidRequest}
	}

	if err := g.persistence.SaveGraph(ctx, graph); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}

	return graph, nil
}

// Update validates and replaces an existing graph.
func (g *Graph) Update(ctx context.Context, id string, graph *models.Graph) (*models.Graph, error) {
	if graph == nil {
		return nil, ErrGraphNil
	}

	existing, err := g.persistence.GraphByID(ctx, id)
	if err != nil {
		return nil, err
	}

	graph.ID = existing.ID
	graph.CreatedAt = existing.CreatedAt

	if graph.Name == "" {
		graph.Name = existing.Name
	}

	if err := graph.Validate(); err != nil {
		return nil, &ServiceError{Op: "Update", Message: err.Error(), Err: ErrInvalidRequest}
	}

	if err := g.persistence.SaveGraph(ctx, graph); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}

	return graph, nil
}

// Delete removes a graph.
func (g *Graph) Delete(ctx context.Context, id string) error {
	return g.persistence.DeleteGraph(ctx, id)
}
