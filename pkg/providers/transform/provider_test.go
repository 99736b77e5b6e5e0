package transform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentweave/agentweave/pkg/protocol"
	"github.com/agentweave/agentweave/pkg/providers/transform"
)

func execute(t *testing.T, config, inputs map[string]any) map[string]any {
	t.Helper()

	outputs, err := transform.NewProvider().Execute(context.Background(), config, inputs)
	require.NoError(t, err)

	return outputs
}

func TestExecute_PathExtraction(t *testing.T) {
	testCases := []struct {
		name       string
		expression string
		input      any
		expected   any
	}{
		{
			name:       "identity",
			expression: ".",
			input:      map[string]any{"a": float64(1)},
			expected:   map[string]any{"a": float64(1)},
		},
		{
			name:       "nested field",
			expression: ".user.name",
			input:      map[string]any{"user": map[string]any{"name": "ada"}},
			expected:   "ada",
		},
		{
			name:       "array index",
			expression: ".items[1]",
			input:      map[string]any{"items": []any{"a", "b", "c"}},
			expected:   "b",
		},
		{
			name:       "index then field",
			expression: ".items[0].id",
			input:      map[string]any{"items": []any{map[string]any{"id": float64(7)}}},
			expected:   float64(7),
		},
		{
			name:       "missing field yields nil",
			expression: ".missing",
			input:      map[string]any{"a": float64(1)},
			expected:   nil,
		},
		{
			name:       "index out of range yields nil",
			expression: ".items[9]",
			input:      map[string]any{"items": []any{"a"}},
			expected:   nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outputs := execute(t,
				map[string]any{"expression": tc.expression},
				map[string]any{"input": tc.input},
			)

			assert.Equal(t, tc.expected, outputs["result"])
		})
	}
}

func TestExecute_PathMustStartWithDot(t *testing.T) {
	_, err := transform.NewProvider().Execute(context.Background(),
		map[string]any{"expression": "user.name"},
		map[string]any{"input": map[string]any{}},
	)
	require.Error(t, err)

	var configErr *protocol.ConfigError

	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "expression", configErr.Key)
}

func TestExecute_Regex(t *testing.T) {
	outputs := execute(t,
		map[string]any{
			"transform_type": "regex",
			"expression":     `\d+`,
		},
		map[string]any{"input": "order 12 of 700"},
	)

	assert.Equal(t, []any{"12", "700"}, outputs["result"])
}

func TestExecute_RegexOnNonString(t *testing.T) {
	outputs := execute(t,
		map[string]any{
			"transform_type": "regex",
			"expression":     `"id":\d+`,
		},
		map[string]any{"input": map[string]any{"id": 42}},
	)

	assert.Equal(t, []any{`"id":42`}, outputs["result"])
}

func TestExecute_InvalidRegex(t *testing.T) {
	_, err := transform.NewProvider().Execute(context.Background(),
		map[string]any{
			"transform_type": "regex",
			"expression":     "[",
		},
		map[string]any{"input": "x"},
	)
	require.Error(t, err)
}

func TestExecute_Template(t *testing.T) {
	outputs := execute(t,
		map[string]any{
			"transform_type": "template",
			"expression":     "Hello {{name}}, you have {{count}} messages",
		},
		map[string]any{"name": "ada", "count": 3},
	)

	assert.Equal(t, "Hello ada, you have 3 messages", outputs["result"])
}

func TestExecute_TemplateNonMapInputPassesThrough(t *testing.T) {
	outputs := execute(t,
		map[string]any{
			"transform_type": "template",
			"expression":     "static text",
		},
		map[string]any{"input": "ignored"},
	)

	assert.Equal(t, "static text", outputs["result"])
}

func TestExecute_Arithmetic(t *testing.T) {
	testCases := []struct {
		expression string
		expected   float64
	}{
		{"2 + 3", 5},
		{"10 - 4", 6},
		{"6 * 7", 42},
		{"9 / 2", 4.5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"-5 + 3", -2},
		{"10.5 + 2", 12.5},
		{"100 / 25", 4},
		{"0.5 * 8", 4},
	}

	for _, tc := range testCases {
		t.Run(tc.expression, func(t *testing.T) {
			outputs := execute(t,
				map[string]any{
					"transform_type": "expression",
					"expression":     tc.expression,
				},
				nil,
			)

			assert.InDelta(t, tc.expected, outputs["result"], 0.0001)
		})
	}
}

func TestExecute_ArithmeticDivisionByZero(t *testing.T) {
	_, err := transform.NewProvider().Execute(context.Background(),
		map[string]any{
			"transform_type": "expression",
			"expression":     "1 / 0",
		},
		nil,
	)
	require.Error(t, err)
}

func TestExecute_MissingExpression(t *testing.T) {
	_, err := transform.NewProvider().Execute(context.Background(),
		map[string]any{"transform_type": "jq"},
		nil,
	)
	require.Error(t, err)

	var configErr *protocol.ConfigError

	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "expression", configErr.Key)
}

func TestExecute_UnsupportedTransformType(t *testing.T) {
	_, err := transform.NewProvider().Execute(context.Background(),
		map[string]any{
			"transform_type": "xslt",
			"expression":     ".",
		},
		nil,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transform type")
}
