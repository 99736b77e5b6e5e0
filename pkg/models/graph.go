package models

import (
	"fmt"
	"time"
)

// Edge represents a directed data dependency between two nodes. SourceOutput
// names the output key the edge carries; empty means the source's default
// output. The (SourceID, TargetID, SourceOutput) triple is unique within a
// graph. An edge is only active when its source actually emitted
// SourceOutput during a given execution.
type Edge struct {
	ID           string `json:"id"`
	SourceID     string `json:"source_id"               validate:"required"`
	TargetID     string `json:"target_id"               validate:"required"`
	SourceOutput string `json:"source_output,omitempty"`
}

// Graph owns a set of nodes and edges addressed by stable string ids. It is
// constructed by the editor or persistence layer, passed whole to the
// engine, and never mutated during execution.
type Graph struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=3"`
	Description string    `json:"description"`
	Nodes       []*Node   `json:"nodes"`
	Edges       []*Edge   `json:"edges"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// InboundEdges returns all edges targeting the given node, in insertion order.
func (g *Graph) InboundEdges(nodeID string) []*Edge {
	var edges []*Edge

	for _, e := range g.Edges {
		if e.TargetID == nodeID {
			edges = append(edges, e)
		}
	}

	return edges
}

// OutboundEdges returns all edges originating from the given node.
func (g *Graph) OutboundEdges(nodeID string) []*Edge {
	var edges []*Edge

	for _, e := range g.Edges {
		if e.SourceID == nodeID {
			edges = append(edges, e)
		}
	}

	return edges
}

// LoopBodyIDs returns the body node ids configured on a loop node. The
// config value survives JSON round-trips as []any, so both slice shapes are
// accepted.
func (n *Node) LoopBodyIDs() []string {
	raw, ok := n.Config["body_node_ids"]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		ids := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok {
				ids = append(ids, s)
			}
		}

		return ids
	}

	return nil
}

// ValidationError describes a structurally invalid graph. It is fatal and
// reported before any node executes.
type ValidationError struct {
	Reason string
	NodeID string
	EdgeID string
}

func (e *ValidationError) Error() string {
	switch {
	case e.NodeID != "":
		return fmt.Sprintf("invalid graph: %s (node %s)", e.Reason, e.NodeID)
	case e.EdgeID != "":
		return fmt.Sprintf("invalid graph: %s (edge %s)", e.Reason, e.EdgeID)
	default:
		return "invalid graph: " + e.Reason
	}
}

// Validate checks the structural invariants of the graph: unique node ids,
// no orphan edges, unique edge triples, inbound edges on every non-input
// node, required config keys per node type, and no cycle outside a loop
// body. It returns a *ValidationError identifying the offending node or
// edge.
func (g *Graph) Validate() error {
	nodeIDs := make(map[string]bool, len(g.Nodes))

	for _, n := range g.Nodes {
		if n.ID == "" {
			return &ValidationError{Reason: "node id must not be empty"}
		}

		if nodeIDs[n.ID] {
			return &ValidationError{Reason: "duplicate node id", NodeID: n.ID}
		}

		nodeIDs[n.ID] = true
	}

	edgeTriples := make(map[string]bool, len(g.Edges))

	for _, e := range g.Edges {
		if !nodeIDs[e.SourceID] {
			return &ValidationError{Reason: "edge references unknown source node " + e.SourceID, EdgeID: e.ID}
		}

		if !nodeIDs[e.TargetID] {
			return &ValidationError{Reason: "edge references unknown target node " + e.TargetID, EdgeID: e.ID}
		}

		triple := e.SourceID + "\x00" + e.TargetID + "\x00" + e.SourceOutput
		if edgeTriples[triple] {
			return &ValidationError{Reason: "duplicate edge", EdgeID: e.ID}
		}

		edgeTriples[triple] = true
	}

	bodyOwner, err := g.loopBodyOwners(nodeIDs)
	if err != nil {
		return err
	}

	for _, n := range g.Nodes {
		if n.Type != NodeTypeInput && len(g.InboundEdges(n.ID)) == 0 && bodyOwner[n.ID] == "" {
			return &ValidationError{Reason: "node has no inbound edge", NodeID: n.ID}
		}

		for _, key := range RequiredConfigKeys(n.Type) {
			if _, ok := n.Config[key]; !ok {
				return &ValidationError{Reason: "missing required config key '" + key + "'", NodeID: n.ID}
			}
		}
	}

	return g.checkAcyclic(bodyOwner)
}

// loopBodyOwners maps each loop-body node id to its owning loop node id. A
// node may belong to at most one loop body, and a loop may not name itself.
func (g *Graph) loopBodyOwners(nodeIDs map[string]bool) (map[string]string, error) {
	owner := make(map[string]string)

	for _, n := range g.Nodes {
		if n.Type != NodeTypeLoop {
			continue
		}

		for _, bodyID := range n.LoopBodyIDs() {
			if !nodeIDs[bodyID] {
				return nil, &ValidationError{Reason: "loop body references unknown node " + bodyID, NodeID: n.ID}
			}

			if bodyID == n.ID {
				return nil, &ValidationError{Reason: "loop body must not contain the loop node itself", NodeID: n.ID}
			}

			if prev, ok := owner[bodyID]; ok && prev != n.ID {
				return nil, &ValidationError{Reason: "node " + bodyID + " belongs to multiple loop bodies", NodeID: n.ID}
			}

			owner[bodyID] = n.ID
		}
	}

	return owner, nil
}

// checkAcyclic runs Kahn's algorithm over the graph with every loop body
// contracted into its loop node. Cycles wholly contained in a loop body are
// legal (they express iteration feedback); anything left unprocessed after
// contraction is a real cycle.
func (g *Graph) checkAcyclic(bodyOwner map[string]string) error {
	contract := func(id string) string {
		if owner, ok := bodyOwner[id]; ok && owner != "" {
			return owner
		}

		return id
	}

	inDegree := make(map[string]int)
	dependents := make(map[string][]string)

	for _, n := range g.Nodes {
		inDegree[contract(n.ID)] = 0
	}

	for _, e := range g.Edges {
		source, target := contract(e.SourceID), contract(e.TargetID)
		if source == target {
			continue
		}

		inDegree[target]++
		dependents[source] = append(dependents[source], target)
	}

	var queue []string

	for _, n := range g.Nodes {
		id := contract(n.ID)
		if deg, ok := inDegree[id]; ok && deg == 0 {
			queue = append(queue, id)
			delete(inDegree, id)
		}
	}

	visited := 0
	total := len(inDegree) + len(queue)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		visited++

		for _, dep := range dependents[current] {
			if _, ok := inDegree[dep]; !ok {
				continue
			}

			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				delete(inDegree, dep)
			}
		}
	}

	if visited != total {
		for id := range inDegree {
			return &ValidationError{Reason: "cycle detected outside loop body", NodeID: id}
		}
	}

	return nil
}
