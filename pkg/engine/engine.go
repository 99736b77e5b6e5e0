// Package engine executes agent graphs: it orders nodes by dependency,
// resolves their configuration against upstream outputs, dispatches each
// node to its provider adapter or control-flow handler, and aggregates
// per-node results into an execution trace.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/otelhelper"
	"github.com/agentweave/agentweave/pkg/registry"
	"github.com/agentweave/agentweave/pkg/resolver"
	"github.com/agentweave/agentweave/pkg/trace"
)

// Engine executes one agent graph per Run call. A single Engine is safe for
// concurrent Runs; every run owns its own ExecutionContext and trace.
type Engine struct {
	registry *registry.Registry
	logger   *slog.Logger
	tracer   oteltrace.Tracer

	// MaxParallel bounds concurrent node dispatch within a dependency
	// level. Values below 2 mean strictly sequential execution, which
	// also makes trace order fully deterministic.
	MaxParallel int
}

// NewEngine creates an engine over the given provider registry.
func NewEngine(reg *registry.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		registry: reg,
		logger:   logger,
		tracer:   otel.Tracer("agentweave/engine"),
	}
}

// Run executes the graph end to end and returns the complete trace. The
// only error return is a pre-flight *models.ValidationError; per-node
// failures are captured in the trace and never escalate. Subscribers
// receive each trace record as it is appended.
func (e *Engine) Run(ctx context.Context, graph *models.Graph, initialInputs map[string]any, subscribers ...trace.Subscriber) (*trace.ExecutionTrace, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	plan, err := buildSchedule(graph)
	if err != nil {
		return nil, &models.ValidationError{Reason: err.Error()}
	}

	execCtx := models.NewExecutionContext(graph.ID, initialInputs)
	tr := trace.New(execCtx.ID, graph.ID)

	for _, fn := range subscribers {
		tr.Subscribe(fn)
	}

	logger := e.logger.With("graph_id", graph.ID, "execution_id", execCtx.ID)
	logger.InfoContext(ctx, "Starting graph execution", "nodes", len(graph.Nodes))

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "engine.run",
		attribute.String(otelhelper.GraphIDKey, graph.ID),
		attribute.String(otelhelper.GraphNameKey, graph.Name),
		attribute.String(otelhelper.ExecutionIDKey, execCtx.ID),
	)
	defer span.End()

	run := &runState{
		engine:  e,
		graph:   graph,
		plan:    plan,
		execCtx: execCtx,
		trace:   tr,
		logger:  logger,
	}

	cancelled := run.executeLevels(ctx)

	failed := run.failedNodes()

	switch {
	case cancelled:
		tr.Seal(trace.RunStatusAborted, failed)
	case len(failed) > 0:
		tr.Seal(trace.RunStatusPartialFailure, failed)
	default:
		tr.Seal(trace.RunStatusSucceeded, nil)
	}

	logger.InfoContext(ctx, "Graph execution finished",
		"status", tr.Status(), "failed_nodes", failed, "duration", tr.Duration())

	return tr, nil
}

// runState carries the per-run wiring so the node executor does not thread
// six arguments everywhere.
type runState struct {
	engine  *Engine
	graph   *models.Graph
	plan    *schedule
	execCtx *models.ExecutionContext
	trace   *trace.ExecutionTrace
	logger  *slog.Logger

	mu sync.Mutex // guards execCtx status/output maps under parallel dispatch
}

// executeLevels walks the plan level by level. It returns true when the run
// was cancelled before completing.
func (r *runState) executeLevels(ctx context.Context) bool {
	for i, level := range r.plan.levels {
		if ctx.Err() != nil {
			r.skipRemaining(r.plan.levels[i:])

			return true
		}

		r.executeLevel(ctx, level)
	}

	return ctx.Err() != nil
}

func (r *runState) executeLevel(ctx context.Context, level []*models.Node) {
	if r.engine.MaxParallel < 2 || len(level) < 2 {
		for _, node := range level {
			r.executeNode(ctx, node, "", 0)
		}

		return
	}

	sem := make(chan struct{}, r.engine.MaxParallel)

	var wg sync.WaitGroup

	for _, node := range level {
		wg.Add(1)

		go func(n *models.Node) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			r.executeNode(ctx, n, "", 0)
		}(node)
	}

	wg.Wait()
}

// skipRemaining marks every not-yet-terminal node of the given levels as
// skipped with reason cancelled.
func (r *runState) skipRemaining(levels [][]*models.Node) {
	for _, level := range levels {
		for _, node := range level {
			if r.status(node.ID).Terminal() {
				continue
			}

			r.recordSkip(node, "", 0, trace.SkipReasonCancelled)
		}
	}
}

// executeNode runs a single node through the per-node state machine:
// pending -> running -> {succeeded, failed}, or pending -> skipped. loopID
// and iteration identify loop-body executions in the trace.
func (r *runState) executeNode(ctx context.Context, node *models.Node, loopID string, iteration int) {
	if ctx.Err() != nil {
		r.recordSkip(node, loopID, iteration, trace.SkipReasonCancelled)

		return
	}

	if reason, skip := r.shouldSkip(node, iteration); skip {
		r.recordSkip(node, loopID, iteration, reason)

		return
	}

	r.setStatus(node.ID, models.NodeStatusRunning)
	startedAt := time.Now().UTC()

	ctx, span := otelhelper.StartSpan(ctx, r.engine.tracer, "engine.node",
		attribute.String(otelhelper.NodeIDKey, node.ID),
		attribute.String(otelhelper.NodeTypeKey, string(node.Type)),
	)
	defer span.End()

	var (
		outputs map[string]any
		err     error
	)

	switch node.Type {
	case models.NodeTypeCondition:
		outputs, err = r.executeCondition(ctx, node)
	case models.NodeTypeLoop:
		outputs, err = r.executeLoop(ctx, node)
	default:
		outputs, err = r.dispatch(ctx, node)
	}

	finishedAt := time.Now().UTC()

	if err != nil {
		otelhelper.SetError(span, err)
		r.logger.WarnContext(ctx, "Node failed",
			"node_id", node.ID, "node_type", node.Type, "error", err)

		r.setStatus(node.ID, models.NodeStatusFailed)
		r.trace.Append(trace.Record{
			NodeID:     node.ID,
			Status:     models.NodeStatusFailed,
			Error:      err.Error(),
			LoopID:     loopID,
			Iteration:  iteration,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
		})

		return
	}

	r.setOutputs(node.ID, outputs)
	r.setStatus(node.ID, models.NodeStatusSucceeded)
	r.trace.Append(trace.Record{
		NodeID:     node.ID,
		Status:     models.NodeStatusSucceeded,
		Outputs:    outputs,
		LoopID:     loopID,
		Iteration:  iteration,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	})
}

// dispatch resolves the node's config and hands it to the matching provider
// adapter.
func (r *runState) dispatch(ctx context.Context, node *models.Node) (map[string]any, error) {
	if err := r.engine.registry.ValidateNodeConfig(node); err != nil {
		return nil, err
	}

	resolved, err := r.resolveConfig(node)
	if err != nil {
		return nil, err
	}

	provider, err := r.engine.registry.CreateProvider(ctx, node.Type)
	if err != nil {
		return nil, err
	}

	inputs := r.gatherInputs(node)
	if node.Type == models.NodeTypeInput {
		inputs = r.execCtx.Variables
	}

	return provider.Execute(ctx, resolved, inputs)
}

func (r *runState) resolveConfig(node *models.Node) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return resolver.ResolveConfig(node.Config, r.execCtx)
}

// shouldSkip implements the skip rule: a node with inbound edges runs only
// when at least one inbound edge is satisfied, i.e. its source succeeded
// and actually emitted the edge's output key. Loop feedback edges do not
// count against the first iteration.
func (r *runState) shouldSkip(node *models.Node, iteration int) (string, bool) {
	edges := r.graph.InboundEdges(node.ID)
	if len(edges) == 0 {
		return "", false
	}

	sawBranchMiss := false
	owner := r.plan.bodyOwner[node.ID]

	considered := 0

	for _, e := range edges {
		// An edge from a sibling body node is iteration feedback; on the
		// first pass its source has legitimately not run yet.
		if owner != "" && iteration == 0 && r.plan.bodyOwner[e.SourceID] == owner && !r.status(e.SourceID).Terminal() {
			continue
		}

		considered++

		switch r.status(e.SourceID) {
		case models.NodeStatusSucceeded:
			if r.emitted(e.SourceID, e.SourceOutput) {
				return "", false
			}

			sawBranchMiss = true
		case models.NodeStatusFailed, models.NodeStatusSkipped:
			// not satisfied; keep looking for an alternative
		default:
			// Source not yet terminal: only possible for loop feedback on
			// later iterations where the source was skipped this pass.
		}
	}

	if considered == 0 {
		return "", false
	}

	if sawBranchMiss {
		return trace.SkipReasonBranchNotTaken, true
	}

	return trace.SkipReasonUpstream, true
}

// gatherInputs collects the values carried by the node's satisfied inbound
// edges, keyed by output key. A single upstream value is aliased under
// "input" as the node's primary input.
func (r *runState) gatherInputs(node *models.Node) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	inputs := make(map[string]any)

	for _, e := range r.graph.InboundEdges(node.ID) {
		if r.execCtx.Status(e.SourceID) != models.NodeStatusSucceeded {
			continue
		}

		sourceOutputs, ok := r.execCtx.Outputs[e.SourceID]
		if !ok {
			continue
		}

		if e.SourceOutput != "" {
			if v, ok := sourceOutputs[e.SourceOutput]; ok {
				inputs[e.SourceOutput] = v
			}

			continue
		}

		for k, v := range sourceOutputs {
			inputs[k] = v
		}
	}

	if len(inputs) == 1 {
		for _, v := range inputs {
			inputs["input"] = v
		}
	}

	return inputs
}

func (r *runState) recordSkip(node *models.Node, loopID string, iteration int, reason string) {
	now := time.Now().UTC()

	r.setStatus(node.ID, models.NodeStatusSkipped)
	r.trace.Append(trace.Record{
		NodeID:     node.ID,
		Status:     models.NodeStatusSkipped,
		SkipReason: reason,
		LoopID:     loopID,
		Iteration:  iteration,
		StartedAt:  now,
		FinishedAt: now,
	})
}

func (r *runState) failedNodes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var failed []string

	for _, n := range r.graph.Nodes {
		if r.execCtx.Status(n.ID) == models.NodeStatusFailed {
			failed = append(failed, n.ID)
		}
	}

	return failed
}

func (r *runState) status(nodeID string) models.NodeStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.execCtx.Status(nodeID)
}

func (r *runState) setStatus(nodeID string, status models.NodeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.execCtx.SetStatus(nodeID, status)
}

func (r *runState) setOutputs(nodeID string, outputs map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.execCtx.SetOutputs(nodeID, outputs)
}

func (r *runState) emitted(nodeID, key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.execCtx.Emitted(nodeID, key)
}
