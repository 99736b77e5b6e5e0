// Package events defines event types and structures for graph execution
// lifecycle notifications.
package events

import (
	"time"

	"github.com/agentweave/agentweave/pkg/models"
)

type EventType string

// Topic carries every execution lifecycle event.
const Topic = "agentweave.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent  EventType = "execution.started"
	ExecutionFinishedEvent EventType = "execution.finished"
	NodeFinishedEvent      EventType = "node.finished"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	GraphID     string         `json:"graph_id"`
	ExecutionID string         `json:"execution_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ExecutionStarted is published once, before the first node runs.
type ExecutionStarted struct {
	BaseEvent

	Variables map[string]any `json:"variables,omitempty"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

// ExecutionFinished is published after the trace is sealed.
type ExecutionFinished struct {
	BaseEvent

	Status      string        `json:"status"`
	FailedNodes []string      `json:"failed_nodes,omitempty"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}

// NodeFinished is published for every terminal node outcome, including
// skips and per-iteration loop body runs.
type NodeFinished struct {
	BaseEvent

	NodeID       string            `json:"node_id"`
	Status       models.NodeStatus `json:"status"`
	Outputs      map[string]any    `json:"outputs,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	SkipReason   string            `json:"skip_reason,omitempty"`
	LoopID       string            `json:"loop_id,omitempty"`
	Iteration    int               `json:"iteration,omitempty"`
	DurationMs   int64             `json:"duration_ms"`
	FinishedAt   time.Time         `json:"finished_at"`
}

func (e NodeFinished) GetType() EventType {
	return NodeFinishedEvent
}
