// Package transform provides the pure data transformation provider adapter.
// Transforms are deterministic and perform no I/O.
package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/protocol"
)

// Provider implements the transform adapter. The transformation is declared
// by the "transform_type" config key: "jq" (dot-path field extraction),
// "regex" (find all matches), "template" ({{key}} substitution over the
// input map) or "expression" (arithmetic over an already-resolved
// expression).
type Provider struct{}

// NewProvider creates a transform provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Execute applies the declared transformation to the node's input value and
// returns {"result": v}.
func (p *Provider) Execute(ctx context.Context, config map[string]any, inputs map[string]any) (map[string]any, error) {
	expression, ok := config["expression"].(string)
	if !ok {
		return nil, protocol.NewMissingConfigError("expression")
	}

	transformType := "jq"
	if t, ok := config["transform_type"].(string); ok && t != "" {
		transformType = t
	}

	input := primaryInput(inputs)

	var (
		result any
		err    error
	)

	switch transformType {
	case "jq":
		result, err = extractPath(expression, input)
	case "regex":
		result, err = findAll(expression, input)
	case "template":
		result, err = renderTemplate(expression, input)
	case "expression":
		result, err = evalArithmetic(expression)
	default:
		return nil, &protocol.ConfigError{Key: "transform_type", Reason: "unsupported transform type '" + transformType + "'"}
	}

	if err != nil {
		return nil, err
	}

	return map[string]any{models.OutputKeyResult: result}, nil
}

// primaryInput picks the value the transform operates on: the "input" key
// when present, otherwise the sole input value, otherwise the whole map.
func primaryInput(inputs map[string]any) any {
	if v, ok := inputs["input"]; ok {
		return v
	}

	if len(inputs) == 1 {
		for _, v := range inputs {
			return v
		}
	}

	return inputs
}

// extractPath implements dot-path extraction: ".", ".field.sub", ".[2]" and
// combinations of the two.
func extractPath(expression string, data any) (any, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" || expression == "." {
		return data, nil
	}

	if !strings.HasPrefix(expression, ".") {
		return nil, &protocol.ConfigError{Key: "expression", Reason: "path must start with '.'"}
	}

	current := data

	for _, segment := range splitPath(expression[1:]) {
		if idx, isIndex := strings.CutPrefix(segment, "["); isIndex {
			idx = strings.TrimSuffix(idx, "]")

			i, err := strconv.Atoi(idx)
			if err != nil {
				return nil, &protocol.ConfigError{Key: "expression", Reason: "invalid array index '" + segment + "'"}
			}

			list, ok := current.([]any)
			if !ok || i < 0 || i >= len(list) {
				return nil, nil
			}

			current = list[i]

			continue
		}

		obj, ok := current.(map[string]any)
		if !ok {
			return nil, nil
		}

		current, ok = obj[segment]
		if !ok {
			return nil, nil
		}
	}

	return current, nil
}

func splitPath(path string) []string {
	var segments []string

	for _, part := range strings.Split(path, ".") {
		for {
			open := strings.Index(part, "[")
			if open < 0 {
				if part != "" {
					segments = append(segments, part)
				}

				break
			}

			if open > 0 {
				segments = append(segments, part[:open])
			}

			closeIdx := strings.Index(part, "]")
			if closeIdx < 0 {
				segments = append(segments, part[open:])

				break
			}

			segments = append(segments, part[open:closeIdx+1])
			part = part[closeIdx+1:]
		}
	}

	return segments
}

// findAll applies the expression as a regular expression over the string
// form of the input and returns all matches.
func findAll(expression string, data any) (any, error) {
	pattern, err := regexp.Compile(expression)
	if err != nil {
		return nil, &protocol.ConfigError{Key: "expression", Reason: "invalid regular expression: " + err.Error()}
	}

	text, ok := data.(string)
	if !ok {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode input: %w", err)
		}

		text = string(encoded)
	}

	matches := pattern.FindAllString(text, -1)
	result := make([]any, len(matches))

	for i, m := range matches {
		result[i] = m
	}

	return result, nil
}

// renderTemplate replaces {{key}} placeholders with values from the input
// map. Non-string values are JSON-encoded.
func renderTemplate(template string, data any) (any, error) {
	obj, ok := data.(map[string]any)
	if !ok {
		return template, nil
	}

	result := template

	for key, value := range obj {
		text, ok := value.(string)
		if !ok {
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode value for key %q: %w", key, err)
			}

			text = string(encoded)
		}

		result = strings.ReplaceAll(result, "{{"+key+"}}", text)
	}

	return result, nil
}
