package engine_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentweave/agentweave/pkg/config"
	"github.com/agentweave/agentweave/pkg/engine"
	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/registry"
	"github.com/agentweave/agentweave/pkg/testutil"
	"github.com/agentweave/agentweave/pkg/trace"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultProviders(&config.Config{})

	return engine.NewEngine(reg, slog.Default())
}

func node(id string, nodeType models.NodeType, config map[string]any) *models.Node {
	if config == nil {
		config = map[string]any{}
	}

	return &models.Node{ID: id, Type: nodeType, Config: config}
}

func edge(source, target, output string) *models.Edge {
	return &models.Edge{
		ID:           source + "->" + target,
		SourceID:     source,
		TargetID:     target,
		SourceOutput: output,
	}
}

func recordFor(t *testing.T, tr *trace.ExecutionTrace, nodeID string) trace.Record {
	t.Helper()

	record, ok := tr.Record(nodeID)
	require.True(t, ok, "no trace record for node %s", nodeID)

	return record
}

func TestRun_LinearPipeline(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-linear",
		Name: "Linear",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("double", models.NodeTypeTransform, map[string]any{
				"transform_type": "expression",
				"expression":     "{{seed.value}} * 2",
			}),
			node("out", models.NodeTypeOutput, nil),
		},
		Edges: []*models.Edge{
			edge("seed", "double", ""),
			edge("double", "out", "result"),
		},
	}

	tr, err := newEngine(t).Run(context.Background(), graph, map[string]any{"value": 21})
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusSucceeded, tr.Status())
	assert.Empty(t, tr.FailedNodes())

	doubled := recordFor(t, tr, "double")
	assert.Equal(t, models.NodeStatusSucceeded, doubled.Status)
	assert.InDelta(t, 42.0, doubled.Outputs["result"], 0.0001)

	out := recordFor(t, tr, "out")
	assert.Equal(t, models.NodeStatusSucceeded, out.Status)
	assert.InDelta(t, 42.0, out.Outputs["result"], 0.0001)
}

func TestRun_ConditionFalseBranchSkipsDownstream(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-branch",
		Name: "Branching",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("check", models.NodeTypeCondition, map[string]any{
				"expression": "{{seed.value}} > 10",
			}),
			node("big", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "big",
			}),
			node("small", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "small",
			}),
		},
		Edges: []*models.Edge{
			edge("seed", "check", ""),
			edge("check", "big", "true"),
			edge("check", "small", "false"),
		},
	}

	tr, err := newEngine(t).Run(context.Background(), graph, map[string]any{"value": 5})
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusSucceeded, tr.Status())

	check := recordFor(t, tr, "check")
	assert.Equal(t, models.NodeStatusSucceeded, check.Status)
	assert.Equal(t, false, check.Outputs["condition_result"])

	small := recordFor(t, tr, "small")
	assert.Equal(t, models.NodeStatusSucceeded, small.Status)

	big := recordFor(t, tr, "big")
	assert.Equal(t, models.NodeStatusSkipped, big.Status)
	assert.Equal(t, trace.SkipReasonBranchNotTaken, big.SkipReason)
}

func TestRun_ProviderFailureIsPartialFailure(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-partial",
		Name: "Partial failure",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("ask", models.NodeTypeLLM, map[string]any{
				"provider":        "openai",
				"model":           "gpt-4o",
				"prompt_template": "Summarize {{seed.text}}",
			}),
			node("out", models.NodeTypeOutput, nil),
			node("independent", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "still fine",
			}),
		},
		Edges: []*models.Edge{
			edge("seed", "ask", ""),
			edge("ask", "out", "response"),
			edge("seed", "independent", ""),
		},
	}

	// No API key is configured, so the llm node must fail.
	tr, err := newEngine(t).Run(context.Background(), graph, map[string]any{"text": "hello"})
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusPartialFailure, tr.Status())
	assert.Equal(t, []string{"ask"}, tr.FailedNodes())

	ask := recordFor(t, tr, "ask")
	assert.Equal(t, models.NodeStatusFailed, ask.Status)
	assert.NotEmpty(t, ask.Error)

	out := recordFor(t, tr, "out")
	assert.Equal(t, models.NodeStatusSkipped, out.Status)
	assert.Equal(t, trace.SkipReasonUpstream, out.SkipReason)

	independent := recordFor(t, tr, "independent")
	assert.Equal(t, models.NodeStatusSucceeded, independent.Status)
}

func TestRun_LoopExhaustsIterationCap(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-loop",
		Name: "Loop",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("repeat", models.NodeTypeLoop, map[string]any{
				"body_node_ids":  []string{"step"},
				"max_iterations": 3,
			}),
			node("step", models.NodeTypeTransform, map[string]any{
				"transform_type": "expression",
				"expression":     "1 + 1",
			}),
			node("out", models.NodeTypeOutput, nil),
		},
		Edges: []*models.Edge{
			edge("seed", "repeat", ""),
			edge("repeat", "out", ""),
		},
	}

	tr, err := newEngine(t).Run(context.Background(), graph, nil)
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusSucceeded, tr.Status())

	repeat := recordFor(t, tr, "repeat")
	assert.Equal(t, models.NodeStatusSucceeded, repeat.Status)
	assert.Equal(t, 3, repeat.Outputs["iterations"])
	assert.Equal(t, true, repeat.Outputs["loop_exhausted"])

	var iterations []int

	for _, record := range tr.Records() {
		if record.NodeID == "step" {
			assert.Equal(t, "repeat", record.LoopID)
			iterations = append(iterations, record.Iteration)
		}
	}

	assert.Equal(t, []int{0, 1, 2}, iterations)
}

func TestRun_LoopBodyDeclaredOutOfOrder(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-loop-order",
		Name: "Loop body order",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("repeat", models.NodeTypeLoop, map[string]any{
				// Declared order contradicts the producer -> depender edge;
				// each pass must still run the producer first.
				"body_node_ids":  []string{"depender", "producer"},
				"max_iterations": 2,
			}),
			node("producer", models.NodeTypeTransform, map[string]any{
				"transform_type": "expression",
				"expression":     "3 + 4",
			}),
			node("depender", models.NodeTypeTransform, map[string]any{
				"transform_type": "expression",
				"expression":     "{{producer.result}} * 2",
			}),
			node("out", models.NodeTypeOutput, nil),
		},
		Edges: []*models.Edge{
			edge("seed", "repeat", ""),
			edge("producer", "depender", ""),
			edge("repeat", "out", ""),
		},
	}

	tr, err := newEngine(t).Run(context.Background(), graph, nil)
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusSucceeded, tr.Status())

	repeat := recordFor(t, tr, "repeat")
	assert.Equal(t, models.NodeStatusSucceeded, repeat.Status)
	assert.Equal(t, 2, repeat.Outputs["iterations"])

	for _, record := range tr.Records() {
		if record.NodeID == "depender" {
			assert.Equal(t, models.NodeStatusSucceeded, record.Status)
			assert.InDelta(t, 14, record.Outputs["result"], 0.0001)
		}
	}
}

func TestRun_LoopExitCondition(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-loop-exit",
		Name: "Loop with exit",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("repeat", models.NodeTypeLoop, map[string]any{
				"body_node_ids":  []string{"step"},
				"max_iterations": 10,
				"exit_condition": "{{step.result}} > 3",
			}),
			node("step", models.NodeTypeTransform, map[string]any{
				"transform_type": "expression",
				"expression":     "2 + 2",
			}),
		},
		Edges: []*models.Edge{
			edge("seed", "repeat", ""),
		},
	}

	tr, err := newEngine(t).Run(context.Background(), graph, nil)
	require.NoError(t, err)

	repeat := recordFor(t, tr, "repeat")
	assert.Equal(t, models.NodeStatusSucceeded, repeat.Status)
	assert.Equal(t, 1, repeat.Outputs["iterations"])
	assert.Equal(t, false, repeat.Outputs["loop_exhausted"])
}

func TestRun_LoopBodyFailureFailsLoop(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-loop-fail",
		Name: "Loop body failure",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("repeat", models.NodeTypeLoop, map[string]any{
				"body_node_ids":  []string{"step"},
				"max_iterations": 3,
			}),
			node("step", models.NodeTypeTransform, map[string]any{
				"transform_type": "expression",
				"expression":     "{{ghost.value}} + 1",
			}),
			node("out", models.NodeTypeOutput, nil),
		},
		Edges: []*models.Edge{
			edge("seed", "repeat", ""),
			edge("repeat", "out", ""),
		},
	}

	tr, err := newEngine(t).Run(context.Background(), graph, nil)
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusPartialFailure, tr.Status())
	assert.ElementsMatch(t, []string{"repeat", "step"}, tr.FailedNodes())

	out := recordFor(t, tr, "out")
	assert.Equal(t, models.NodeStatusSkipped, out.Status)
}

func TestRun_UnresolvedReferenceFailsNode(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-unresolved",
		Name: "Unresolved",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("broken", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "{{ghost.result}}",
			}),
		},
		Edges: []*models.Edge{
			edge("seed", "broken", ""),
		},
	}

	tr, err := newEngine(t).Run(context.Background(), graph, nil)
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusPartialFailure, tr.Status())

	broken := recordFor(t, tr, "broken")
	assert.Equal(t, models.NodeStatusFailed, broken.Status)
	assert.Contains(t, broken.Error, "unresolved reference")
}

func TestRun_InvalidGraphRejected(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-invalid",
		Name: "Invalid",
		Nodes: []*models.Node{
			node("a", models.NodeTypeTransform, map[string]any{"expression": "."}),
			node("b", models.NodeTypeTransform, map[string]any{"expression": "."}),
		},
		Edges: []*models.Edge{
			edge("a", "b", ""),
			edge("b", "a", ""),
		},
	}

	_, err := newEngine(t).Run(context.Background(), graph, nil)
	require.Error(t, err)

	var validationErr *models.ValidationError

	require.ErrorAs(t, err, &validationErr)
}

func TestRun_CancelledContextAborts(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-cancelled",
		Name: "Cancelled",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("t1", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "x",
			}),
		},
		Edges: []*models.Edge{
			edge("seed", "t1", ""),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr, err := newEngine(t).Run(ctx, graph, nil)
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusAborted, tr.Status())

	for _, record := range tr.Records() {
		assert.Equal(t, models.NodeStatusSkipped, record.Status)
		assert.Equal(t, trace.SkipReasonCancelled, record.SkipReason)
	}
}

func TestRun_ParallelLevelExecution(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-parallel",
		Name: "Parallel",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("a", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "a",
			}),
			node("b", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "b",
			}),
			node("c", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "c",
			}),
		},
		Edges: []*models.Edge{
			edge("seed", "a", ""),
			edge("seed", "b", ""),
			edge("seed", "c", ""),
		},
	}

	eng := newEngine(t)
	eng.MaxParallel = 3

	tr, err := eng.Run(context.Background(), graph, nil)
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusSucceeded, tr.Status())

	for _, id := range []string{"a", "b", "c"} {
		record := recordFor(t, tr, id)
		assert.Equal(t, models.NodeStatusSucceeded, record.Status)
	}
}

func TestRun_MergesAllSourceOutputs(t *testing.T) {
	graph := testutil.CreateTestGraph(
		[]*models.Node{
			testutil.CreateTestNode(
				testutil.WithID("seed"),
				testutil.WithType(models.NodeTypeInput),
				testutil.WithConfig(map[string]any{}),
			),
			testutil.CreateTestNode(
				testutil.WithID("merge"),
				testutil.WithConfig(map[string]any{
					"transform_type": "template",
					"expression":     "{{first}}-{{second}}",
				}),
			),
		},
		[]*models.Edge{
			// An empty source output merges every key the source emitted.
			testutil.Edge("seed", "merge", ""),
		},
	)

	tr, err := newEngine(t).Run(context.Background(), graph, map[string]any{
		"first":  "a",
		"second": "b",
	})
	require.NoError(t, err)

	merge := recordFor(t, tr, "merge")
	assert.Equal(t, models.NodeStatusSucceeded, merge.Status)
	assert.Equal(t, "a-b", merge.Outputs["result"])
}

func TestRun_SubscriberReceivesRecords(t *testing.T) {
	graph := &models.Graph{
		ID:   "g-subscriber",
		Name: "Subscriber",
		Nodes: []*models.Node{
			node("seed", models.NodeTypeInput, nil),
			node("t1", models.NodeTypeTransform, map[string]any{
				"transform_type": "template",
				"expression":     "x",
			}),
		},
		Edges: []*models.Edge{
			edge("seed", "t1", ""),
		},
	}

	var seen []string

	tr, err := newEngine(t).Run(context.Background(), graph, nil, func(record trace.Record) {
		seen = append(seen, record.NodeID)
	})
	require.NoError(t, err)

	assert.Equal(t, trace.RunStatusSucceeded, tr.Status())
	assert.Equal(t, []string{"seed", "t1"}, seen)
}
