// Package web provides HTTP handlers and request/response types for the
// graph API.
package web

import (
	"github.com/agentweave/agentweave/pkg/models"
)

// NodeRequest is the wire form of a node inside a graph request.
type NodeRequest struct {
	ID        string         `json:"id"         validate:"required,min=1"`
	Type      string         `json:"type"       validate:"required,oneof=input output llm api transform condition loop"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// EdgeRequest is the wire form of an edge inside a graph request.
type EdgeRequest struct {
	ID           string `json:"id"`
	SourceID     string `json:"source_id"     validate:"required"`
	TargetID     string `json:"target_id"     validate:"required"`
	SourceOutput string `json:"source_output"`
}

// SaveGraphRequest is the request body for creating or replacing a graph.
type SaveGraphRequest struct {
	Name        string        `json:"name"        validate:"required,min=3"`
	Description string        `json:"description"`
	Nodes       []NodeRequest `json:"nodes"       validate:"required,min=1,dive"`
	Edges       []EdgeRequest `json:"edges"       validate:"dive"`
}

// ToGraph converts the request into the domain model.
func (r *SaveGraphRequest) ToGraph() *models.Graph {
	graph := &models.Graph{
		Name:        r.Name,
		Description: r.Description,
		Nodes:       make([]*models.Node, 0, len(r.Nodes)),
		Edges:       make([]*models.Edge, 0, len(r.Edges)),
	}

	for _, n := range r.Nodes {
		graph.Nodes = append(graph.Nodes, &models.Node{
			ID:        n.ID,
			Type:      models.NodeType(n.Type),
			Name:      n.Name,
			Config:    n.Config,
			PositionX: n.PositionX,
			PositionY: n.PositionY,
		})
	}

	for _, e := range r.Edges {
		graph.Edges = append(graph.Edges, &models.Edge{
			ID:           e.ID,
			SourceID:     e.SourceID,
			TargetID:     e.TargetID,
			SourceOutput: e.SourceOutput,
		})
	}

	return graph
}

// ExecuteGraphRequest is the request body for running a graph.
type ExecuteGraphRequest struct {
	Variables map[string]any `json:"variables"`
}
