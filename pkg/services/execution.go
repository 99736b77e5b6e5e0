package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentweave/agentweave/pkg/engine"
	"github.com/agentweave/agentweave/pkg/eventbus"
	"github.com/agentweave/agentweave/pkg/events"
	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/persistence"
	"github.com/agentweave/agentweave/pkg/trace"
)

// ErrExecutionNotFound is returned when an execution trace is not found.
var ErrExecutionNotFound = persistence.ErrExecutionNotFound

// Execution runs graphs and manages their stored traces.
type Execution struct {
	persistence persistence.Persistence
	engine      *engine.Engine
	eventBus    eventbus.EventBus
	logger      *slog.Logger
}

// NewExecution creates a new execution service. The event bus is optional;
// a nil bus disables lifecycle notifications.
func NewExecution(persistence persistence.Persistence, eng *engine.Engine, bus eventbus.EventBus, logger *slog.Logger) *Execution {
	return &Execution{
		persistence: persistence,
		engine:      eng,
		eventBus:    bus,
		logger:      logger,
	}
}

// Run executes a stored graph and persists the sealed trace. Validation
// failures surface as ErrExecutionRejected; per-node failures are part of
// the returned trace.
func (e *Execution) Run(ctx context.Context, graphID string, variables map[string]any) (*trace.Snapshot, error) {
	graph, err := e.persistence.GraphByID(ctx, graphID)
	if err != nil {
		return nil, err
	}

	return e.RunGraph(ctx, graph, variables)
}

// RunGraph executes an in-memory graph definition.
func (e *Execution) RunGraph(ctx context.Context, graph *models.Graph, variables map[string]any) (*trace.Snapshot, error) {
	if graph == nil {
		return nil, ErrGraphNil
	}

	e.publish(ctx, graph.ID, events.ExecutionStarted{
		BaseEvent: e.baseEvent(events.ExecutionStartedEvent, graph.ID, ""),
		Variables: variables,
	})

	tr, err := e.engine.Run(ctx, graph, variables, e.nodeSubscriber(ctx, graph.ID))
	if err != nil {
		return nil, &ServiceError{Op: "Run", Message: err.Error(), Err: ErrExecutionRejected}
	}

	e.publish(ctx, tr.ExecutionID(), events.ExecutionFinished{
		BaseEvent:   e.baseEvent(events.ExecutionFinishedEvent, graph.ID, tr.ExecutionID()),
		Status:      string(tr.Status()),
		FailedNodes: tr.FailedNodes(),
		Duration:    tr.Duration(),
	})

	snapshot := tr.Snapshot()

	if err := e.persistence.SaveExecution(ctx, &snapshot); err != nil {
		e.logger.ErrorContext(ctx, "Failed to persist execution trace",
			"execution_id", snapshot.ExecutionID, "error", err)
	}

	return &snapshot, nil
}

// Get returns one stored execution trace.
func (e *Execution) Get(ctx context.Context, id string) (*trace.Snapshot, error) {
	return e.persistence.ExecutionByID(ctx, id)
}

// ListByGraph returns the stored executions of a graph.
func (e *Execution) ListByGraph(ctx context.Context, graphID string) ([]*trace.Snapshot, error) {
	return e.persistence.Executions(ctx, graphID)
}

// nodeSubscriber bridges trace records into node.finished events.
func (e *Execution) nodeSubscriber(ctx context.Context, graphID string) trace.Subscriber {
	return func(record trace.Record) {
		e.publish(ctx, record.NodeID, events.NodeFinished{
			BaseEvent:    e.baseEvent(events.NodeFinishedEvent, graphID, ""),
			NodeID:       record.NodeID,
			Status:       record.Status,
			Outputs:      record.Outputs,
			ErrorMessage: record.Error,
			SkipReason:   record.SkipReason,
			LoopID:       record.LoopID,
			Iteration:    record.Iteration,
			DurationMs:   record.FinishedAt.Sub(record.StartedAt).Milliseconds(),
			FinishedAt:   record.FinishedAt,
		})
	}
}

func (e *Execution) baseEvent(eventType events.EventType, graphID, executionID string) events.BaseEvent {
	id := ""
	if e.eventBus != nil {
		id = e.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:          id,
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		GraphID:     graphID,
		ExecutionID: executionID,
	}
}

func (e *Execution) publish(ctx context.Context, key string, event eventbus.Event) {
	if e.eventBus == nil {
		return
	}

	err := e.eventBus.Publish(ctx, key, event)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to publish event",
			"event_type", event.GetType(), "error", err)
	}
}
