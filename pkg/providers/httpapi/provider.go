// Package httpapi provides the HTTP request provider adapter for agent
// graph execution.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/agentweave/agentweave/pkg/protocol"
)

const (
	defaultTimeoutSeconds = 30
	defaultRetryAttempts  = 1
)

// RequestConfig defines the configuration for API nodes.
type RequestConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
	Timeout int               `json:"timeout"`
	Strict  bool              `json:"strict"`
	Retries RetryConfig       `json:"retries"`
}

// RetryConfig defines retry behavior for transient request failures.
type RetryConfig struct {
	Attempts int `json:"attempts"`
	Delay    int `json:"delay"` // milliseconds between attempts
}

// Provider implements the API adapter. A non-2xx status is data, not a node
// failure, unless the node opts into strict mode.
type Provider struct {
	logger *slog.Logger
}

// NewProvider creates an HTTP API provider.
func NewProvider(logger *slog.Logger) *Provider {
	return &Provider{logger: logger}
}

// Execute issues one HTTP request per the resolved config and returns
// {"status": code, "body": raw, "json": parsed?}.
func (p *Provider) Execute(ctx context.Context, config map[string]any, inputs map[string]any) (map[string]any, error) {
	reqConfig, err := parseConfig(config)
	if err != nil {
		return nil, err
	}

	p.logger.DebugContext(ctx, "Dispatching HTTP request",
		"method", reqConfig.Method, "url", reqConfig.URL)

	var (
		outputs map[string]any
		lastErr error
	)

	for attempt := 1; attempt <= reqConfig.Retries.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, &protocol.ProviderError{Provider: "http", Err: ctx.Err()}
			case <-time.After(time.Duration(reqConfig.Retries.Delay) * time.Millisecond):
			}
		}

		outputs, lastErr = p.performRequest(ctx, reqConfig)
		if lastErr == nil {
			return outputs, nil
		}

		// Client errors under strict mode carry the response; they are not
		// transient, so retrying is pointless.
		statusErr := &statusError{}
		if errors.As(lastErr, &statusErr) && statusErr.code < http.StatusInternalServerError {
			break
		}
	}

	return nil, &protocol.ProviderError{
		Provider: "http",
		Detail:   fmt.Sprintf("request failed after %d attempt(s)", reqConfig.Retries.Attempts),
		Err:      lastErr,
	}
}

// statusError marks a non-2xx response under strict mode.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, e.body)
}

func (p *Provider) performRequest(ctx context.Context, config *RequestConfig) (map[string]any, error) {
	var reqBody io.Reader
	if config.Body != "" {
		reqBody = strings.NewReader(config.Body)
	}

	req, err := http.NewRequestWithContext(ctx, config.Method, config.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	if config.Body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{
		Timeout: time.Duration(config.Timeout) * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if config.Strict && (resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices) {
		return nil, &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	outputs := map[string]any{
		"status": resp.StatusCode,
		"body":   string(respBody),
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		outputs["json"] = jsonBody
	}

	return outputs, nil
}

func parseConfig(config map[string]any) (*RequestConfig, error) {
	reqConfig := &RequestConfig{
		Method:  http.MethodGet,
		Headers: make(map[string]string),
		Timeout: defaultTimeoutSeconds,
		Retries: RetryConfig{Attempts: defaultRetryAttempts},
	}

	url, ok := config["url"].(string)
	if !ok || url == "" {
		return nil, protocol.NewMissingConfigError("url")
	}

	reqConfig.URL = url

	if method, ok := config["method"].(string); ok && method != "" {
		reqConfig.Method = strings.ToUpper(method)
	}

	if headers, ok := config["headers"].(map[string]any); ok {
		for k, v := range headers {
			if strVal, ok := v.(string); ok {
				reqConfig.Headers[k] = strVal
			}
		}
	}

	if body, ok := config["body"].(string); ok {
		reqConfig.Body = body
	}

	if timeout, ok := config["timeout"].(float64); ok && timeout > 0 {
		reqConfig.Timeout = int(timeout)
	}

	if strict, ok := config["strict"].(bool); ok {
		reqConfig.Strict = strict
	}

	if retries, ok := config["retries"].(map[string]any); ok {
		if attempts, ok := retries["attempts"].(float64); ok && attempts > 0 {
			reqConfig.Retries.Attempts = int(attempts)
		}

		if delay, ok := retries["delay"].(float64); ok && delay >= 0 {
			reqConfig.Retries.Delay = int(delay)
		}
	}

	return reqConfig, nil
}
