package models

import (
	"github.com/google/uuid"
)

// ExecutionContext is the per-run mutable store of node outputs, statuses
// and loop counters. It is created fresh for every run, owned exclusively by
// the engine run that created it, and discarded when the run ends. Writes
// are isolated per node id, so concurrent dispatch of independent nodes
// needs no locking beyond the trace.
type ExecutionContext struct {
	ID           string                    `json:"id"`
	GraphID      string                    `json:"graph_id"`
	Variables    map[string]any            `json:"variables,omitempty"`
	Outputs      map[string]map[string]any `json:"outputs"`
	Statuses     map[string]NodeStatus     `json:"statuses"`
	LoopCounters map[string]int            `json:"loop_counters,omitempty"`
}

// NewExecutionContext creates a fresh context for a single run. Variables
// carry the caller-supplied initial input values.
func NewExecutionContext(graphID string, variables map[string]any) *ExecutionContext {
	if variables == nil {
		variables = make(map[string]any)
	}

	return &ExecutionContext{
		ID:           generateExecutionID(),
		GraphID:      graphID,
		Variables:    variables,
		Outputs:      make(map[string]map[string]any),
		Statuses:     make(map[string]NodeStatus),
		LoopCounters: make(map[string]int),
	}
}

// SetOutputs commits a node's produced outputs. Later calls replace earlier
// ones, which is how loop iterations feed results forward.
func (c *ExecutionContext) SetOutputs(nodeID string, outputs map[string]any) {
	c.Outputs[nodeID] = outputs
}

// Output returns the value a node produced under the given output key, with
// ok reporting whether the node executed and emitted that key.
func (c *ExecutionContext) Output(nodeID, key string) (any, bool) {
	outputs, ok := c.Outputs[nodeID]
	if !ok {
		return nil, false
	}

	v, ok := outputs[key]

	return v, ok
}

// Emitted reports whether a node produced the given output key. An empty
// key matches any produced output, which is the default-edge rule.
func (c *ExecutionContext) Emitted(nodeID, key string) bool {
	outputs, ok := c.Outputs[nodeID]
	if !ok {
		return false
	}

	if key == "" {
		return true
	}

	_, ok = outputs[key]

	return ok
}

// SetStatus records a node's execution status.
func (c *ExecutionContext) SetStatus(nodeID string, status NodeStatus) {
	c.Statuses[nodeID] = status
}

// Status returns a node's current status, NodeStatusPending if unset.
func (c *ExecutionContext) Status(nodeID string) NodeStatus {
	if s, ok := c.Statuses[nodeID]; ok {
		return s
	}

	return NodeStatusPending
}

// Execution ids are uuid v7 so traces sort by creation time in the
// persistence stores and never collide across runs.
func generateExecutionID() string {
	return uuid.Must(uuid.NewV7()).String()
}
