// Package file provides file-based persistence for graphs and execution
// traces, one JSON document per entity.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/persistence"
	"github.com/agentweave/agentweave/pkg/trace"
)

var _ persistence.Persistence = (*Persistence)(nil)

// Persistence implements persistence.Persistence on the file system.
type Persistence struct {
	root          string
	graphRepo     *GraphRepository
	executionRepo *ExecutionRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. A "file://" prefix is stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		graphRepo:     NewGraphRepository(cleanRoot),
		executionRepo: NewExecutionRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. File persistence has nothing to
// release.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Graphs(ctx context.Context) ([]*models.Graph, error) {
	return fp.graphRepo.GetAll(ctx)
}

func (fp *Persistence) SaveGraph(ctx context.Context, graph *models.Graph) error {
	return fp.graphRepo.Save(ctx, graph)
}

func (fp *Persistence) GraphByID(ctx context.Context, id string) (*models.Graph, error) {
	return fp.graphRepo.GetByID(ctx, id)
}

func (fp *Persistence) DeleteGraph(ctx context.Context, id string) error {
	return fp.graphRepo.Delete(ctx, id)
}

func (fp *Persistence) Executions(ctx context.Context, graphID string) ([]*trace.Snapshot, error) {
	return fp.executionRepo.GetByGraph(ctx, graphID)
}

func (fp *Persistence) SaveExecution(ctx context.Context, snapshot *trace.Snapshot) error {
	return fp.executionRepo.Save(ctx, snapshot)
}

func (fp *Persistence) ExecutionByID(ctx context.Context, id string) (*trace.Snapshot, error) {
	return fp.executionRepo.GetByID(ctx, id)
}
