package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agentweave/agentweave/pkg/config"
	"github.com/agentweave/agentweave/pkg/engine"
	"github.com/agentweave/agentweave/pkg/events"
	"github.com/agentweave/agentweave/pkg/mocks"
	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/persistence"
	"github.com/agentweave/agentweave/pkg/persistence/file"
	"github.com/agentweave/agentweave/pkg/registry"
	"github.com/agentweave/agentweave/pkg/services"
	"github.com/agentweave/agentweave/pkg/trace"
)

func newTestEngine() *engine.Engine {
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultProviders(&config.Config{})

	return engine.NewEngine(reg, slog.Default())
}

func executableGraph() *models.Graph {
	return &models.Graph{
		ID:   "g1",
		Name: "Doubler",
		Nodes: []*models.Node{
			{ID: "seed", Type: models.NodeTypeInput, Config: map[string]any{}},
			{ID: "double", Type: models.NodeTypeTransform, Config: map[string]any{
				"transform_type": "expression",
				"expression":     "{{seed.value}} * 2",
			}},
			{ID: "out", Type: models.NodeTypeOutput, Config: map[string]any{}},
		},
		Edges: []*models.Edge{
			{ID: "e1", SourceID: "seed", TargetID: "double"},
			{ID: "e2", SourceID: "double", TargetID: "out", SourceOutput: "result"},
		},
	}
}

func TestRun_PersistsTrace(t *testing.T) {
	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

	require.NoError(t, store.SaveGraph(ctx, executableGraph()))

	service := services.NewExecution(store, newTestEngine(), nil, slog.Default())

	snapshot, err := service.Run(ctx, "g1", map[string]any{"value": 21})
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusSucceeded, snapshot.Status)
	assert.Equal(t, "g1", snapshot.GraphID)
	assert.NotEmpty(t, snapshot.ExecutionID)

	stored, err := service.Get(ctx, snapshot.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ExecutionID, stored.ExecutionID)

	executions, err := service.ListByGraph(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, executions, 1)
}

func TestRun_GraphNotFound(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	service := services.NewExecution(store, newTestEngine(), nil, slog.Default())

	_, err := service.Run(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, persistence.IsGraphNotFound(err))
}

func TestRunGraph_InvalidGraphRejected(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	service := services.NewExecution(store, newTestEngine(), nil, slog.Default())

	graph := executableGraph()
	graph.Edges = append(graph.Edges, &models.Edge{ID: "e3", SourceID: "out", TargetID: "ghost"})

	_, err := service.RunGraph(context.Background(), graph, nil)
	require.ErrorIs(t, err, services.ErrExecutionRejected)
	assert.True(t, services.IsValidationError(err))
}

func TestRunGraph_NilGraph(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	service := services.NewExecution(store, newTestEngine(), nil, slog.Default())

	_, err := service.RunGraph(context.Background(), nil, nil)
	require.ErrorIs(t, err, services.ErrGraphNil)
}

func TestRunGraph_PublishesLifecycleEvents(t *testing.T) {
	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())

	bus := new(mocks.MockEventBus)
	bus.On("GenerateID").Return("event-1")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := services.NewExecution(store, newTestEngine(), bus, slog.Default())

	snapshot, err := service.RunGraph(ctx, executableGraph(), map[string]any{"value": 1})
	require.NoError(t, err)
	assert.Equal(t, trace.RunStatusSucceeded, snapshot.Status)

	var types []events.EventType

	for _, call := range bus.Calls {
		if call.Method != "Publish" {
			continue
		}

		event := call.Arguments.Get(2).(interface{ GetType() events.EventType })
		types = append(types, event.GetType())
	}

	// execution.started, one node.finished per node, execution.finished.
	require.Len(t, types, 5)
	assert.Equal(t, events.ExecutionStartedEvent, types[0])
	assert.Equal(t, events.ExecutionFinishedEvent, types[len(types)-1])

	for _, eventType := range types[1 : len(types)-1] {
		assert.Equal(t, events.NodeFinishedEvent, eventType)
	}
}
