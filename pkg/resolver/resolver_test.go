package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/resolver"
)

func newContext(t *testing.T) *models.ExecutionContext {
	t.Helper()

	execCtx := models.NewExecutionContext("g1", nil)
	execCtx.SetOutputs("fetch", map[string]any{
		"status": 200,
		"body":   `{"ok":true}`,
		"json":   map[string]any{"ok": true},
		"count":  float64(42),
		"empty":  nil,
	})
	execCtx.SetOutputs("ask", map[string]any{"response": "hello"})

	return execCtx
}

func TestResolve_Substitution(t *testing.T) {
	execCtx := newContext(t)

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"single reference", "{{ask.response}} world", "hello world"},
		{"number formatting", "got {{fetch.count}} items", "got 42 items"},
		{"multiple references", "{{ask.response}}-{{fetch.status}}", "hello-200"},
		{"whitespace inside braces", "{{ ask.response }}", "hello"},
		{"no placeholders", "plain text", "plain text"},
		{"nil renders empty", "[{{fetch.empty}}]", "[]"},
		{"composite renders json", "{{fetch.json}}", `{"ok":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := resolver.Resolve(tt.raw, execCtx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resolved)
		})
	}
}

func TestResolve_UnresolvedReference(t *testing.T) {
	execCtx := newContext(t)

	_, err := resolver.Resolve("{{ghost.output}}", execCtx)
	require.Error(t, err)

	var unresolved *resolver.UnresolvedReferenceError

	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "ghost", unresolved.NodeID)
	assert.Equal(t, "output", unresolved.OutputKey)
}

func TestResolve_ExistingNodeMissingKey(t *testing.T) {
	execCtx := newContext(t)

	_, err := resolver.Resolve("{{ask.missing}}", execCtx)
	require.Error(t, err)

	var unresolved *resolver.UnresolvedReferenceError

	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "ask", unresolved.NodeID)
}

func TestResolveConfig_TypePreservation(t *testing.T) {
	execCtx := newContext(t)

	config := map[string]any{
		"status":  "{{fetch.status}}",
		"payload": "{{fetch.json}}",
		"text":    "status was {{fetch.status}}",
		"nested": map[string]any{
			"answer": "{{ask.response}}",
		},
		"list":    []any{"{{fetch.count}}", "literal"},
		"untyped": 7,
	}

	resolved, err := resolver.ResolveConfig(config, execCtx)
	require.NoError(t, err)

	assert.Equal(t, 200, resolved["status"])
	assert.Equal(t, map[string]any{"ok": true}, resolved["payload"])
	assert.Equal(t, "status was 200", resolved["text"])
	assert.Equal(t, map[string]any{"answer": "hello"}, resolved["nested"])
	assert.Equal(t, []any{float64(42), "literal"}, resolved["list"])
	assert.Equal(t, 7, resolved["untyped"])
}

func TestResolveConfig_DoesNotMutateInput(t *testing.T) {
	execCtx := newContext(t)

	config := map[string]any{"value": "{{ask.response}}"}

	_, err := resolver.ResolveConfig(config, execCtx)
	require.NoError(t, err)
	assert.Equal(t, "{{ask.response}}", config["value"])
}
