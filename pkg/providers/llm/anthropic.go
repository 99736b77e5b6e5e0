package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentweave/agentweave/pkg/protocol"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// AnthropicCompleter shapes messages-API requests for the Anthropic API.
type AnthropicCompleter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAnthropicCompleter creates a completer against the public Anthropic
// endpoint. baseURL overrides the endpoint when non-empty.
func NewAnthropicCompleter(apiKey, baseURL string, timeout time.Duration) *AnthropicCompleter {
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}

	return &AnthropicCompleter{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type anthropicRequest struct {
	Model     string `json:"model"`
	System    string `json:"system,omitempty"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a messages request and normalizes the response.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string, params CompletionParams) (*Completion, error) {
	if c.apiKey == "" {
		return nil, &protocol.ProviderError{Provider: "anthropic", Detail: "API key not configured"}
	}

	payload := anthropicRequest{
		Model:       params.Model,
		System:      params.System,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	}
	payload.Messages = append(payload.Messages, struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: "user", Content: prompt})

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &protocol.ProviderError{Provider: "anthropic", Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &protocol.ProviderError{Provider: "anthropic", Detail: "failed to read response", Err: err}
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &protocol.ProviderError{Provider: "anthropic", Detail: "malformed response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if parsed.Error != nil {
			detail = fmt.Sprintf("HTTP %d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
		}

		return nil, &protocol.ProviderError{Provider: "anthropic", Detail: detail}
	}

	var text string

	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	if text == "" {
		return nil, &protocol.ProviderError{Provider: "anthropic", Detail: "response contains no text content"}
	}

	model := parsed.Model
	if model == "" {
		model = params.Model
	}

	return &Completion{
		Text:  text,
		Model: model,
		Usage: Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
	}, nil
}
