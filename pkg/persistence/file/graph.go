package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/persistence"
)

// GraphRepository handles graph-related file operations.
type GraphRepository struct {
	root string
}

// NewGraphRepository creates a new graph repository.
func NewGraphRepository(root string) *GraphRepository {
	return &GraphRepository{root: root}
}

func (gr *GraphRepository) dir() string {
	return filepath.Join(gr.root, "graphs")
}

func (gr *GraphRepository) path(id string) string {
	return filepath.Join(gr.dir(), id+".json")
}

// GetAll returns every stored graph, newest first.
func (gr *GraphRepository) GetAll(ctx context.Context) ([]*models.Graph, error) {
	root := os.DirFS(gr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list graph files: %w", err)
	}

	graphs := make([]*models.Graph, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		graphID := file[:len(file)-len(".json")]

		graph, err := gr.GetByID(ctx, graphID)
		if err != nil {
			if persistence.IsGraphNotFound(err) {
				continue
			}

			return nil, err
		}

		graphs = append(graphs, graph)
	}

	sort.Slice(graphs, func(i, j int) bool {
		return graphs[i].CreatedAt.After(graphs[j].CreatedAt)
	})

	return graphs, nil
}

// GetByID loads a graph by its identifier.
func (gr *GraphRepository) GetByID(_ context.Context, id string) (*models.Graph, error) {
	data, err := os.ReadFile(gr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewGraphError("GetByID", id, persistence.ErrGraphNotFound)
		}

		return nil, persistence.NewGraphError("GetByID", id, err)
	}

	var graph models.Graph

	err = json.Unmarshal(data, &graph)
	if err != nil {
		return nil, persistence.NewGraphError("GetByID", id, err)
	}

	return &graph, nil
}

// Save writes the graph to disk, assigning an ID and timestamps when
// missing.
func (gr *GraphRepository) Save(_ context.Context, graph *models.Graph) error {
	if graph.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return persistence.NewGraphError("Save", "", err)
		}

		graph.ID = id.String()
	}

	now := time.Now().UTC()
	if graph.CreatedAt.IsZero() {
		graph.CreatedAt = now
	}

	graph.UpdatedAt = now

	err := os.MkdirAll(gr.dir(), 0o755)
	if err != nil {
		return persistence.NewGraphError("Save", graph.ID, err)
	}

	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return persistence.NewGraphError("Save", graph.ID, err)
	}

	err = os.WriteFile(gr.path(graph.ID), data, 0o644)
	if err != nil {
		return persistence.NewGraphError("Save", graph.ID, err)
	}

	return nil
}

// Delete removes the graph file.
func (gr *GraphRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(gr.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewGraphError("Delete", id, persistence.ErrGraphNotFound)
		}

		return persistence.NewGraphError("Delete", id, err)
	}

	return nil
}
