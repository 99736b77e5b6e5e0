package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/agentweave/agentweave/pkg/persistence"
	"github.com/agentweave/agentweave/pkg/trace"
)

// ExecutionRepository stores sealed execution traces.
type ExecutionRepository struct {
	root string
}

// NewExecutionRepository creates a new execution repository.
func NewExecutionRepository(root string) *ExecutionRepository {
	return &ExecutionRepository{root: root}
}

func (er *ExecutionRepository) dir() string {
	return filepath.Join(er.root, "executions")
}

func (er *ExecutionRepository) path(id string) string {
	return filepath.Join(er.dir(), id+".json")
}

// GetByGraph returns the stored executions of one graph, newest first. An
// empty graphID returns every execution.
func (er *ExecutionRepository) GetByGraph(ctx context.Context, graphID string) ([]*trace.Snapshot, error) {
	root := os.DirFS(er.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	snapshots := make([]*trace.Snapshot, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		executionID := file[:len(file)-len(".json")]

		snapshot, err := er.GetByID(ctx, executionID)
		if err != nil {
			if persistence.IsExecutionNotFound(err) {
				continue
			}

			return nil, err
		}

		if graphID != "" && snapshot.GraphID != graphID {
			continue
		}

		snapshots = append(snapshots, snapshot)
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].StartedAt.After(snapshots[j].StartedAt)
	})

	return snapshots, nil
}

// GetByID loads one execution trace.
func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*trace.Snapshot, error) {
	data, err := os.ReadFile(er.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	var snapshot trace.Snapshot

	err = json.Unmarshal(data, &snapshot)
	if err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return &snapshot, nil
}

// Save writes a sealed trace to disk.
func (er *ExecutionRepository) Save(_ context.Context, snapshot *trace.Snapshot) error {
	err := os.MkdirAll(er.dir(), 0o755)
	if err != nil {
		return persistence.NewExecutionError("Save", snapshot.ExecutionID, err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return persistence.NewExecutionError("Save", snapshot.ExecutionID, err)
	}

	err = os.WriteFile(er.path(snapshot.ExecutionID), data, 0o644)
	if err != nil {
		return persistence.NewExecutionError("Save", snapshot.ExecutionID, err)
	}

	return nil
}
