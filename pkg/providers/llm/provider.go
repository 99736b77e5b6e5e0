package llm

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/protocol"
)

// Provider implements the LLM adapter. The completer is selected by the
// node's "provider" config key; everything past that point is
// provider-neutral.
type Provider struct {
	completers map[string]Completer
	logger     *slog.Logger
}

// NewProvider creates an LLM provider over the given completers, keyed by
// provider name ("openai", "anthropic").
func NewProvider(completers map[string]Completer, logger *slog.Logger) *Provider {
	return &Provider{completers: completers, logger: logger}
}

// Execute runs one completion. The prompt template arrives fully resolved;
// outputs are {"response": text, "model": m, "usage": {...}} plus "json"
// when the node opted into JSON output.
func (p *Provider) Execute(ctx context.Context, config map[string]any, inputs map[string]any) (map[string]any, error) {
	providerName, ok := config["provider"].(string)
	if !ok || providerName == "" {
		return nil, protocol.NewMissingConfigError("provider")
	}

	completer, ok := p.completers[providerName]
	if !ok {
		return nil, &protocol.ConfigError{Key: "provider", Reason: "unknown LLM provider '" + providerName + "'"}
	}

	model, ok := config["model"].(string)
	if !ok || model == "" {
		return nil, protocol.NewMissingConfigError("model")
	}

	prompt, ok := config["prompt_template"].(string)
	if !ok {
		return nil, protocol.NewMissingConfigError("prompt_template")
	}

	params := CompletionParams{
		Model:       model,
		System:      "You are a helpful assistant.",
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}

	if system, ok := config["system"].(string); ok && system != "" {
		params.System = system
	}

	if temperature, ok := config["temperature"].(float64); ok {
		params.Temperature = temperature
	}

	if maxTokens, ok := config["max_tokens"].(float64); ok {
		params.MaxTokens = int(maxTokens)
	}

	p.logger.DebugContext(ctx, "Dispatching completion",
		"provider", providerName, "model", model)

	completion, err := completer.Complete(ctx, prompt, params)
	if err != nil {
		return nil, err
	}

	outputs := map[string]any{
		models.OutputKeyResponse: completion.Text,
		"model":                  completion.Model,
		"usage": map[string]any{
			"prompt_tokens":     completion.Usage.PromptTokens,
			"completion_tokens": completion.Usage.CompletionTokens,
			"total_tokens":      completion.Usage.TotalTokens,
		},
	}

	if jsonOutput, ok := config["json_output"].(bool); ok && jsonOutput {
		parsed, err := parseJSONResponse(completion.Text)
		if err != nil {
			return nil, &protocol.ProviderError{Provider: providerName, Detail: "model did not return parseable JSON", Err: err}
		}

		outputs["json"] = parsed
	}

	return outputs, nil
}

// parseJSONResponse parses model output as JSON, repairing the usual LLM
// artifacts (markdown fences, trailing commas) first.
func parseJSONResponse(text string) (any, error) {
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return nil, err
	}

	return parsed, nil
}
