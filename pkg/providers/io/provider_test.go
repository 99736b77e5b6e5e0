package io_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentweave/agentweave/pkg/providers/io"
)

func TestInput_EmitsAllInitialValues(t *testing.T) {
	outputs, err := io.NewInputProvider().Execute(context.Background(), map[string]any{}, map[string]any{
		"query": "weather",
		"limit": 5,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"query": "weather", "limit": 5}, outputs)
}

func TestInput_NamedValue(t *testing.T) {
	outputs, err := io.NewInputProvider().Execute(context.Background(),
		map[string]any{"input_name": "query"},
		map[string]any{"query": "weather", "limit": 5},
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"query": "weather"}, outputs)
}

func TestInput_NamedValueFallsBackToDefault(t *testing.T) {
	outputs, err := io.NewInputProvider().Execute(context.Background(),
		map[string]any{"input_name": "query", "default_value": "news"},
		map[string]any{},
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"query": "news"}, outputs)
}

func TestOutput_ForwardsPrimaryInput(t *testing.T) {
	outputs, err := io.NewOutputProvider().Execute(context.Background(), map[string]any{}, map[string]any{
		"response": "hello",
		"input":    "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"result": "hello"}, outputs)
}

func TestOutput_ForwardsWholeMapOnMultipleInputs(t *testing.T) {
	inputs := map[string]any{"a": 1, "b": 2}

	outputs, err := io.NewOutputProvider().Execute(context.Background(), map[string]any{}, inputs)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"result": inputs}, outputs)
}
