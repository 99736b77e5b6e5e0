// Package trace records per-node execution outcomes for a single agent
// graph run. The trace is produced incrementally, supports live
// subscription, and is immutable once the run ends.
package trace

import (
	"sync"
	"time"

	"github.com/agentweave/agentweave/pkg/models"
)

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	// RunStatusSucceeded means every executed node succeeded.
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusPartialFailure means at least one node failed but scheduling
	// completed for every reachable node.
	RunStatusPartialFailure RunStatus = "partial_failure"
	// RunStatusAborted means the caller cancelled the run.
	RunStatusAborted RunStatus = "aborted"
)

// Skip reasons recorded on skipped nodes.
const (
	SkipReasonUpstream       = "upstream_failed"
	SkipReasonBranchNotTaken = "branch_not_taken"
	SkipReasonCancelled      = "cancelled"
)

// Record is one per-node execution record. Loop-body executions carry the
// owning loop node id and a zero-based iteration index so the trace stays a
// flat, inspectable log.
type Record struct {
	NodeID     string            `json:"node_id"`
	Status     models.NodeStatus `json:"status"`
	Outputs    map[string]any    `json:"outputs,omitempty"`
	Error      string            `json:"error,omitempty"`
	SkipReason string            `json:"skip_reason,omitempty"`
	LoopID     string            `json:"loop_id,omitempty"`
	Iteration  int               `json:"iteration,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// Subscriber receives each record as it is appended, letting a caller
// render live progress without polling engine internals.
type Subscriber func(Record)

// ExecutionTrace is the ordered sequence of per-node records for one run.
// Appends are serialized; everything else about a run's context is written
// by exactly one goroutine per node id.
type ExecutionTrace struct {
	mu          sync.Mutex
	executionID string
	graphID     string
	records     []Record
	status      RunStatus
	failedNodes []string
	startedAt   time.Time
	finishedAt  time.Time
	sealed      bool
	subscribers []Subscriber
}

// New creates an empty trace for the given run.
func New(executionID, graphID string) *ExecutionTrace {
	return &ExecutionTrace{
		executionID: executionID,
		graphID:     graphID,
		startedAt:   time.Now().UTC(),
	}
}

// Subscribe registers a live subscriber. Subscribers must be registered
// before the run starts; they are invoked synchronously on append.
func (t *ExecutionTrace) Subscribe(fn Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.subscribers = append(t.subscribers, fn)
}

// Append adds a record to the trace and notifies subscribers. Appends on a
// sealed trace are ignored.
func (t *ExecutionTrace) Append(record Record) {
	t.mu.Lock()

	if t.sealed {
		t.mu.Unlock()

		return
	}

	t.records = append(t.records, record)
	subscribers := t.subscribers
	t.mu.Unlock()

	for _, fn := range subscribers {
		fn(record)
	}
}

// Seal marks the run finished. The trace is immutable afterwards.
func (t *ExecutionTrace) Seal(status RunStatus, failedNodes []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed {
		return
	}

	t.status = status
	t.failedNodes = failedNodes
	t.finishedAt = time.Now().UTC()
	t.sealed = true
}

// Records returns a copy of the per-node records in append order.
func (t *ExecutionTrace) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Record, len(t.records))
	copy(out, t.records)

	return out
}

// Record returns the latest record for a node, with ok reporting presence.
func (t *ExecutionTrace) Record(nodeID string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.records) - 1; i >= 0; i-- {
		if t.records[i].NodeID == nodeID {
			return t.records[i], true
		}
	}

	return Record{}, false
}

// Status returns the overall run status. Empty until the trace is sealed.
func (t *ExecutionTrace) Status() RunStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.status
}

// FailedNodes returns the ids of nodes that ended Failed.
func (t *ExecutionTrace) FailedNodes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.failedNodes))
	copy(out, t.failedNodes)

	return out
}

// ExecutionID returns the run's execution id.
func (t *ExecutionTrace) ExecutionID() string {
	return t.executionID
}

// GraphID returns the executed graph's id.
func (t *ExecutionTrace) GraphID() string {
	return t.graphID
}

// Duration returns the wall-clock duration of the run; zero until sealed.
func (t *ExecutionTrace) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.sealed {
		return 0
	}

	return t.finishedAt.Sub(t.startedAt)
}

// Snapshot is the serializable form of a completed trace.
type Snapshot struct {
	ExecutionID string    `json:"execution_id"`
	GraphID     string    `json:"graph_id"`
	Status      RunStatus `json:"status"`
	FailedNodes []string  `json:"failed_nodes,omitempty"`
	Records     []Record  `json:"records"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Snapshot returns the serializable form of the trace.
func (t *ExecutionTrace) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	records := make([]Record, len(t.records))
	copy(records, t.records)

	failed := make([]string, len(t.failedNodes))
	copy(failed, t.failedNodes)

	return Snapshot{
		ExecutionID: t.executionID,
		GraphID:     t.graphID,
		Status:      t.status,
		FailedNodes: failed,
		Records:     records,
		StartedAt:   t.startedAt,
		FinishedAt:  t.finishedAt,
	}
}
