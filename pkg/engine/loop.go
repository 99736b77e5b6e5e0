package engine

import (
	"context"
	"fmt"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/protocol"
	"github.com/agentweave/agentweave/pkg/resolver"
)

// executeLoop runs the loop body sequentially, in dependency order, for
// up to max_iterations passes. An exit_condition, when configured, is
// re-resolved and evaluated after every pass; reaching the iteration cap
// without it firing is not an error, the loop just reports loop_exhausted.
// A body node failure fails the loop node itself.
func (r *runState) executeLoop(ctx context.Context, node *models.Node) (map[string]any, error) {
	bodyIDs := node.LoopBodyIDs()
	if len(bodyIDs) == 0 {
		return nil, protocol.NewMissingConfigError("body_node_ids")
	}

	maxIterations, err := intConfig(node.Config, "max_iterations")
	if err != nil {
		return nil, err
	}

	if maxIterations < 1 {
		return nil, &protocol.ConfigError{Key: "max_iterations", Reason: "must be at least 1"}
	}

	exitExpr, _ := node.ConfigString("exit_condition")

	body := make([]*models.Node, 0, len(bodyIDs))

	for _, id := range bodyIDs {
		bodyNode := r.graph.NodeByID(id)
		if bodyNode == nil {
			return nil, &protocol.ConfigError{Key: "body_node_ids", Reason: fmt.Sprintf("unknown node %q", id)}
		}

		body = append(body, bodyNode)
	}

	body = orderLoopBody(r.graph, body)

	var (
		results   []any
		exhausted = true
	)

	iterations := 0

	for i := 0; i < maxIterations; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		r.setLoopCounter(node.ID, i)

		for _, bodyNode := range body {
			r.executeNode(ctx, bodyNode, node.ID, i)

			if r.status(bodyNode.ID) == models.NodeStatusFailed {
				return nil, fmt.Errorf("loop body node %s failed on iteration %d", bodyNode.ID, i)
			}
		}

		iterations = i + 1
		results = append(results, r.iterationResult(body))

		if exitExpr != "" {
			done, err := r.loopExitMet(exitExpr)
			if err != nil {
				return nil, err
			}

			if done {
				exhausted = false

				break
			}
		}
	}

	return map[string]any{
		"iterations":     iterations,
		"results":        results,
		"loop_exhausted": exhausted,
	}, nil
}

// iterationResult snapshots what a pass produced: the last body node's sole
// output value, or its full output map when it emitted several keys.
func (r *runState) iterationResult(body []*models.Node) any {
	last := body[len(body)-1]

	r.mu.Lock()
	defer r.mu.Unlock()

	outputs, ok := r.execCtx.Outputs[last.ID]
	if !ok {
		return nil
	}

	if len(outputs) == 1 {
		for _, v := range outputs {
			return v
		}
	}

	return outputs
}

func (r *runState) loopExitMet(expr string) (bool, error) {
	r.mu.Lock()
	resolved, err := resolver.Resolve(expr, r.execCtx)
	r.mu.Unlock()

	if err != nil {
		return false, err
	}

	met, err := evaluateCondition(resolved)
	if err != nil {
		return false, &protocol.ConfigError{Key: "exit_condition", Reason: err.Error()}
	}

	return met, nil
}

func (r *runState) setLoopCounter(loopID string, iteration int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.execCtx.LoopCounters[loopID] = iteration
}

// intConfig reads an integer config value, tolerating the float64 form JSON
// decoding produces.
func intConfig(config map[string]any, key string) (int, error) {
	v, ok := config[key]
	if !ok {
		return 0, protocol.NewMissingConfigError(key)
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, &protocol.ConfigError{Key: key, Reason: fmt.Sprintf("expected a number, got %T", v)}
	}
}
