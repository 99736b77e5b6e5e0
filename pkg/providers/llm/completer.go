// Package llm provides the LLM provider adapter for agent graph execution.
// Provider-specific payload shaping (OpenAI vs. Anthropic request shapes)
// stays behind the Completer interface; the adapter and the engine never
// branch on the provider name.
package llm

import (
	"context"
)

// CompletionParams carries the model parameters of a single completion call.
type CompletionParams struct {
	Model       string
	System      string
	Temperature float64
	MaxTokens   int
}

// Usage reports the token accounting of a completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the provider-neutral result of a completion call.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Completer is the single capability interface wrapping a hosted LLM.
// Implementations shape the provider-specific request and normalize the
// response; credentials come from process configuration, never from the
// graph.
type Completer interface {
	Complete(ctx context.Context, prompt string, params CompletionParams) (*Completion, error)
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)
