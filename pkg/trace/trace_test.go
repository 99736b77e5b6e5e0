package trace_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/trace"
)

func TestAppendAndRecordLookup(t *testing.T) {
	tr := trace.New("exec-1", "graph-1")

	tr.Append(trace.Record{NodeID: "a", Status: models.NodeStatusSucceeded})
	tr.Append(trace.Record{NodeID: "b", Status: models.NodeStatusFailed, Error: "boom"})

	records := tr.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].NodeID)
	assert.Equal(t, "b", records[1].NodeID)

	record, ok := tr.Record("b")
	require.True(t, ok)
	assert.Equal(t, models.NodeStatusFailed, record.Status)
	assert.Equal(t, "boom", record.Error)

	_, ok = tr.Record("missing")
	assert.False(t, ok)
}

func TestRecordReturnsLatestForLoopIterations(t *testing.T) {
	tr := trace.New("exec-1", "graph-1")

	tr.Append(trace.Record{NodeID: "step", LoopID: "repeat", Iteration: 0, Status: models.NodeStatusSucceeded})
	tr.Append(trace.Record{NodeID: "step", LoopID: "repeat", Iteration: 1, Status: models.NodeStatusSucceeded})

	record, ok := tr.Record("step")
	require.True(t, ok)
	assert.Equal(t, 1, record.Iteration)
}

func TestSealMakesTraceImmutable(t *testing.T) {
	tr := trace.New("exec-1", "graph-1")

	tr.Append(trace.Record{NodeID: "a", Status: models.NodeStatusSucceeded})
	tr.Seal(trace.RunStatusPartialFailure, []string{"b"})

	assert.Equal(t, trace.RunStatusPartialFailure, tr.Status())
	assert.Equal(t, []string{"b"}, tr.FailedNodes())

	tr.Append(trace.Record{NodeID: "late", Status: models.NodeStatusSucceeded})
	assert.Len(t, tr.Records(), 1)

	// A second seal keeps the first outcome.
	tr.Seal(trace.RunStatusSucceeded, nil)
	assert.Equal(t, trace.RunStatusPartialFailure, tr.Status())
}

func TestStatusEmptyUntilSealed(t *testing.T) {
	tr := trace.New("exec-1", "graph-1")

	assert.Equal(t, trace.RunStatus(""), tr.Status())
	assert.Zero(t, tr.Duration())

	tr.Seal(trace.RunStatusSucceeded, nil)
	assert.Equal(t, trace.RunStatusSucceeded, tr.Status())
}

func TestSubscriberNotifiedOnAppend(t *testing.T) {
	tr := trace.New("exec-1", "graph-1")

	var seen []trace.Record

	tr.Subscribe(func(record trace.Record) {
		seen = append(seen, record)
	})

	tr.Append(trace.Record{NodeID: "a", Status: models.NodeStatusSucceeded})
	tr.Append(trace.Record{NodeID: "b", Status: models.NodeStatusSkipped, SkipReason: trace.SkipReasonUpstream})

	require.Len(t, seen, 2)
	assert.Equal(t, "a", seen[0].NodeID)
	assert.Equal(t, trace.SkipReasonUpstream, seen[1].SkipReason)
}

func TestSnapshot(t *testing.T) {
	tr := trace.New("exec-1", "graph-1")

	started := time.Now().UTC()
	tr.Append(trace.Record{NodeID: "a", Status: models.NodeStatusSucceeded, StartedAt: started, FinishedAt: started})
	tr.Seal(trace.RunStatusSucceeded, nil)

	snapshot := tr.Snapshot()

	assert.Equal(t, "exec-1", snapshot.ExecutionID)
	assert.Equal(t, "graph-1", snapshot.GraphID)
	assert.Equal(t, trace.RunStatusSucceeded, snapshot.Status)
	assert.Empty(t, snapshot.FailedNodes)
	require.Len(t, snapshot.Records, 1)
	assert.Equal(t, "a", snapshot.Records[0].NodeID)
	assert.False(t, snapshot.FinishedAt.IsZero())
}
