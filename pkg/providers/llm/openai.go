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

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// OpenAICompleter shapes chat-completion requests for the OpenAI API.
type OpenAICompleter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAICompleter creates a completer against the public OpenAI endpoint.
// baseURL overrides the endpoint when non-empty (tests, proxies).
func NewOpenAICompleter(apiKey, baseURL string, timeout time.Duration) *OpenAICompleter {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}

	return &OpenAICompleter{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a chat completion request and normalizes the response.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, params CompletionParams) (*Completion, error) {
	if c.apiKey == "" {
		return nil, &protocol.ProviderError{Provider: "openai", Detail: "API key not configured"}
	}

	payload := openAIRequest{
		Model:       params.Model,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: params.System},
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &protocol.ProviderError{Provider: "openai", Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &protocol.ProviderError{Provider: "openai", Detail: "failed to read response", Err: err}
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &protocol.ProviderError{Provider: "openai", Detail: "malformed response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if parsed.Error != nil {
			detail = fmt.Sprintf("HTTP %d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
		}

		return nil, &protocol.ProviderError{Provider: "openai", Detail: detail}
	}

	if len(parsed.Choices) == 0 {
		return nil, &protocol.ProviderError{Provider: "openai", Detail: "response contains no choices"}
	}

	model := parsed.Model
	if model == "" {
		model = params.Model
	}

	return &Completion{
		Text:  parsed.Choices[0].Message.Content,
		Model: model,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}
