// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/google/uuid"

	"github.com/agentweave/agentweave/pkg/models"
)

// CreateTestNode creates a test Node with default values that can be
// overridden.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:        uuid.New().String(),
		Type:      models.NodeTypeTransform,
		Name:      "Test Node",
		Config:    map[string]any{"transform_type": "template", "expression": "{{input}}"},
		PositionX: 100,
		PositionY: 200,
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node ID.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithType sets the node type.
func WithType(nodeType models.NodeType) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.Node) {
	return func(n *models.Node) {
		n.Config = config
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.Node) {
	return func(n *models.Node) {
		n.Name = name
	}
}

// CreateTestGraph creates a graph from the given nodes and edges with a
// generated ID.
func CreateTestGraph(nodes []*models.Node, edges []*models.Edge) *models.Graph {
	return &models.Graph{
		ID:    uuid.New().String(),
		Name:  "Test Graph",
		Nodes: nodes,
		Edges: edges,
	}
}

// Edge builds an edge between two nodes on the given output key.
func Edge(sourceID, targetID, sourceOutput string) *models.Edge {
	return &models.Edge{
		ID:           uuid.New().String(),
		SourceID:     sourceID,
		TargetID:     targetID,
		SourceOutput: sourceOutput,
	}
}
