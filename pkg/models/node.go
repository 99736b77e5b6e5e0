// Package models defines the core domain models for agent graph execution.
package models

// NodeType represents the kind of work a node performs.
type NodeType string

const (
	NodeTypeInput     NodeType = "input"
	NodeTypeOutput    NodeType = "output"
	NodeTypeLLM       NodeType = "llm"
	NodeTypeAPI       NodeType = "api"
	NodeTypeTransform NodeType = "transform"
	NodeTypeCondition NodeType = "condition"
	NodeTypeLoop      NodeType = "loop"
)

// Node represents a single typed unit of work in an agent graph.
// Type is immutable after creation; Config holds the per-type settings
// (prompt template, URL, condition expression, loop bounds, ...).
// PositionX/PositionY are display-only and ignored by the engine.
type Node struct {
	ID        string         `json:"id"         validate:"required"`
	Type      NodeType       `json:"type"       validate:"required"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// IsControlFlow reports whether the node is handled by the engine itself
// rather than dispatched to a provider adapter.
func (n *Node) IsControlFlow() bool {
	return n.Type == NodeTypeCondition || n.Type == NodeTypeLoop
}

// ConfigString returns a string config value, with ok reporting presence.
func (n *Node) ConfigString(key string) (string, bool) {
	v, ok := n.Config[key].(string)

	return v, ok
}

// NodeStatus defines the possible states of a node execution.
type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusSucceeded NodeStatus = "succeeded"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
)

// Terminal reports whether the status is a terminal state.
func (s NodeStatus) Terminal() bool {
	return s == NodeStatusSucceeded || s == NodeStatusFailed || s == NodeStatusSkipped
}

// Well-known output keys. Condition nodes emit on exactly one of
// OutputKeyTrue/OutputKeyFalse per execution; every other node type emits on
// its listed key.
const (
	OutputKeyTrue     = "true"
	OutputKeyFalse    = "false"
	OutputKeyResult   = "result"
	OutputKeyResponse = "response"
)

// requiredConfigKeys lists the config keys a node type must carry before it
// can be scheduled. Checked at validation time, not at creation time.
var requiredConfigKeys = map[NodeType][]string{
	NodeTypeLLM:       {"provider", "model", "prompt_template"},
	NodeTypeAPI:       {"url", "method"},
	NodeTypeCondition: {"expression"},
	NodeTypeLoop:      {"body_node_ids", "max_iterations"},
}

// RequiredConfigKeys returns the config keys required for the given type.
func RequiredConfigKeys(t NodeType) []string {
	return requiredConfigKeys[t]
}
