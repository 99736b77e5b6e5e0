// Package persistence provides the data storage abstraction layer for
// graphs and execution traces.
package persistence

import (
	"context"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/trace"
)

type Persistence interface {
	Graphs(ctx context.Context) ([]*models.Graph, error)
	SaveGraph(ctx context.Context, graph *models.Graph) error
	GraphByID(ctx context.Context, id string) (*models.Graph, error)
	DeleteGraph(ctx context.Context, id string) error

	Executions(ctx context.Context, graphID string) ([]*trace.Snapshot, error)
	SaveExecution(ctx context.Context, snapshot *trace.Snapshot) error
	ExecutionByID(ctx context.Context, id string) (*trace.Snapshot, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
