// Package resolver substitutes upstream node output references inside node
// configuration values. References have the form {{node_id.output_key}} and
// are resolved against the current execution context. Resolution is textual,
// pure and side-effect free.
package resolver

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentweave/agentweave/pkg/models"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_\-]+)\.([a-zA-Z0-9_\-]+)\s*\}\}`)

// UnresolvedReferenceError reports a reference to an output key the named
// node has not produced, either because it has not executed or because it
// executed without emitting that key (a condition node's untaken branch).
type UnresolvedReferenceError struct {
	NodeID    string
	OutputKey string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference {{%s.%s}}", e.NodeID, e.OutputKey)
}

// Resolve substitutes every placeholder in raw with the referenced upstream
// output. Multiple placeholders are resolved independently; non-placeholder
// text passes through verbatim.
func Resolve(raw string, execCtx *models.ExecutionContext) (string, error) {
	var resolveErr error

	resolved := placeholderPattern.ReplaceAllStringFunc(raw, func(match string) string {
		if resolveErr != nil {
			return match
		}

		groups := placeholderPattern.FindStringSubmatch(match)
		nodeID, outputKey := groups[1], groups[2]

		value, ok := execCtx.Output(nodeID, outputKey)
		if !ok {
			resolveErr = &UnresolvedReferenceError{NodeID: nodeID, OutputKey: outputKey}

			return match
		}

		return stringify(value)
	})

	if resolveErr != nil {
		return "", resolveErr
	}

	return resolved, nil
}

// ResolveConfig resolves every string value in a config map, descending into
// nested maps and slices. The input map is not mutated.
func ResolveConfig(config map[string]any, execCtx *models.ExecutionContext) (map[string]any, error) {
	resolved, err := resolveValue(config, execCtx)
	if err != nil {
		return nil, err
	}

	out, ok := resolved.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("resolved config is not a map: %T", resolved)
	}

	return out, nil
}

func resolveValue(value any, execCtx *models.ExecutionContext) (any, error) {
	switch v := value.(type) {
	case string:
		// A value that is exactly one placeholder keeps the referenced
		// value's type instead of flattening to a string.
		if groups := placeholderPattern.FindStringSubmatch(v); groups != nil && groups[0] == strings.TrimSpace(v) {
			resolved, ok := execCtx.Output(groups[1], groups[2])
			if !ok {
				return nil, &UnresolvedReferenceError{NodeID: groups[1], OutputKey: groups[2]}
			}

			return resolved, nil
		}

		return Resolve(v, execCtx)
	case map[string]any:
		out := make(map[string]any, len(v))

		for key, item := range v {
			resolved, err := resolveValue(item, execCtx)
			if err != nil {
				return nil, err
			}

			out[key] = resolved
		}

		return out, nil
	case []any:
		out := make([]any, len(v))

		for i, item := range v {
			resolved, err := resolveValue(item, execCtx)
			if err != nil {
				return nil, err
			}

			out[i] = resolved
		}

		return out, nil
	default:
		return value, nil
	}
}

// stringify renders a resolved value back into the surrounding text.
// Scalars keep their natural formatting; composites are JSON-encoded.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}
