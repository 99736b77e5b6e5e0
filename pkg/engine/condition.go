package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentweave/agentweave/pkg/models"
	"github.com/agentweave/agentweave/pkg/protocol"
	"github.com/agentweave/agentweave/pkg/resolver"
)

// executeCondition evaluates the node's expression and routes the node's
// primary input to exactly one of the "true"/"false" output keys. Downstream
// nodes on the untaken branch see no emitted value and are skipped.
func (r *runState) executeCondition(_ context.Context, node *models.Node) (map[string]any, error) {
	expr, ok := node.ConfigString("expression")
	if !ok || expr == "" {
		return nil, protocol.NewMissingConfigError("expression")
	}

	r.mu.Lock()
	resolved, err := resolver.Resolve(expr, r.execCtx)
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}

	result, err := evaluateCondition(resolved)
	if err != nil {
		return nil, &protocol.ConfigError{Key: "expression", Reason: err.Error()}
	}

	key := models.OutputKeyFalse
	if result {
		key = models.OutputKeyTrue
	}

	outputs := map[string]any{
		key:                result,
		"condition_result": result,
	}

	// The node's primary input rides along on the taken branch so
	// downstream nodes can consume the routed value directly.
	if v, ok := r.gatherInputs(node)["input"]; ok {
		outputs[key] = v
	}

	return outputs, nil
}

var comparisonOperators = []string{"==", "!=", ">=", "<=", ">", "<"}

// evaluateCondition interprets a fully resolved expression. Expressions are
// either a single comparison (numeric when both sides parse as numbers,
// lexicographic otherwise) or a bare value judged by truthiness.
func evaluateCondition(expr string) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, fmt.Errorf("empty expression")
	}

	for _, op := range comparisonOperators {
		idx := findOperator(expr, op)
		if idx < 0 {
			continue
		}

		left := strings.TrimSpace(expr[:idx])
		right := strings.TrimSpace(expr[idx+len(op):])

		if left == "" || right == "" {
			return false, fmt.Errorf("incomplete comparison %q", expr)
		}

		return compare(left, right, op)
	}

	return truthy(expr), nil
}

// findOperator locates op outside of quoted strings. The two-character
// operators are matched before their one-character prefixes by the caller's
// ordering.
func findOperator(expr, op string) int {
	inQuote := byte(0)

	for i := 0; i+len(op) <= len(expr); i++ {
		c := expr[i]

		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}

			continue
		}

		if c == '\'' || c == '"' {
			inQuote = c

			continue
		}

		if expr[i:i+len(op)] == op {
			// Avoid matching ">" inside ">=" when scanning for ">".
			if len(op) == 1 && i+1 < len(expr) && expr[i+1] == '=' && (c == '>' || c == '<') {
				continue
			}

			return i
		}
	}

	return -1
}

func compare(left, right, op string) (bool, error) {
	lf, lok := parseNumber(left)
	rf, rok := parseNumber(right)

	if lok && rok {
		switch op {
		case "==":
			return lf == rf, nil
		case "!=":
			return lf != rf, nil
		case ">":
			return lf > rf, nil
		case ">=":
			return lf >= rf, nil
		case "<":
			return lf < rf, nil
		case "<=":
			return lf <= rf, nil
		}
	}

	ls := unquote(left)
	rs := unquote(right)

	switch op {
	case "==":
		return ls == rs, nil
	case "!=":
		return ls != rs, nil
	case ">":
		return ls > rs, nil
	case ">=":
		return ls >= rs, nil
	case "<":
		return ls < rs, nil
	case "<=":
		return ls <= rs, nil
	}

	return false, fmt.Errorf("unsupported operator %q", op)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(unquote(s), 64)

	return f, err == nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}

	return s
}

// truthy mirrors the falsy set used across providers: empty string, "false",
// "0", "null" and "nil" are false, everything else true.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(unquote(s))) {
	case "", "false", "0", "null", "nil":
		return false
	default:
		return true
	}
}
