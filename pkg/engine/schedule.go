package engine

import (
	"fmt"

	"github.com/agentweave/agentweave/pkg/models"
)

// schedule is the dependency-ordered execution plan for one run. Nodes are
// grouped into levels via Kahn's algorithm; nodes within a level have no
// data relationship and may be dispatched concurrently. Loop bodies are
// contracted into their loop node for the outer ordering and re-executed
// internally per iteration.
type schedule struct {
	levels    [][]*models.Node
	bodyOwner map[string]string // body node id -> owning loop node id
}

// buildSchedule computes the topological levels of the graph with every
// loop body contracted into its loop node. Ties within a level are broken
// by node insertion order, which keeps the plan deterministic.
func buildSchedule(g *models.Graph) (*schedule, error) {
	bodyOwner := make(map[string]string)

	for _, n := range g.Nodes {
		if n.Type != models.NodeTypeLoop {
			continue
		}

		for _, bodyID := range n.LoopBodyIDs() {
			bodyOwner[bodyID] = n.ID
		}
	}

	contract := func(id string) string {
		if owner, ok := bodyOwner[id]; ok {
			return owner
		}

		return id
	}

	inDegree := make(map[string]int, len(g.Nodes))

	for _, n := range g.Nodes {
		if _, isBody := bodyOwner[n.ID]; isBody {
			continue
		}

		inDegree[n.ID] = 0
	}

	for _, e := range g.Edges {
		source, target := contract(e.SourceID), contract(e.TargetID)
		if source == target {
			continue
		}

		inDegree[target]++
	}

	plan := &schedule{bodyOwner: bodyOwner}
	scheduled := make(map[string]bool, len(inDegree))

	for len(scheduled) < len(inDegree) {
		var level []*models.Node

		// Insertion order within the level keeps ties deterministic.
		for _, n := range g.Nodes {
			deg, ok := inDegree[n.ID]
			if !ok || scheduled[n.ID] || deg != 0 {
				continue
			}

			level = append(level, n)
		}

		if len(level) == 0 {
			return nil, fmt.Errorf("graph contains a cycle outside a loop body")
		}

		levelSet := make(map[string]bool, len(level))

		for _, n := range level {
			scheduled[n.ID] = true
			levelSet[n.ID] = true
		}

		// Contraction means a loop node's outbound edges include those of
		// its body members, so the decrement walks the full edge set.
		for _, e := range g.Edges {
			source, target := contract(e.SourceID), contract(e.TargetID)
			if source != target && levelSet[source] {
				inDegree[target]--
			}
		}

		plan.levels = append(plan.levels, level)
	}

	return plan, nil
}

// orderLoopBody sorts loop body nodes topologically over their intra-body
// edges so each pass runs producers before consumers, whatever the declared
// body order says. When every remaining node sits on a cycle, the edges
// closing it are iteration feedback: the first remaining node in declared
// order is released, which keeps the order deterministic.
func orderLoopBody(g *models.Graph, body []*models.Node) []*models.Node {
	inBody := make(map[string]bool, len(body))

	for _, n := range body {
		inBody[n.ID] = true
	}

	inDegree := make(map[string]int, len(body))

	for _, e := range g.Edges {
		if inBody[e.SourceID] && inBody[e.TargetID] && e.SourceID != e.TargetID {
			inDegree[e.TargetID]++
		}
	}

	ordered := make([]*models.Node, 0, len(body))
	placed := make(map[string]bool, len(body))

	for len(ordered) < len(body) {
		next := -1

		for i, n := range body {
			if !placed[n.ID] && inDegree[n.ID] == 0 {
				next = i

				break
			}
		}

		if next == -1 {
			for i, n := range body {
				if !placed[n.ID] {
					next = i

					break
				}
			}
		}

		n := body[next]
		placed[n.ID] = true
		ordered = append(ordered, n)

		for _, e := range g.Edges {
			if e.SourceID == n.ID && inBody[e.TargetID] && !placed[e.TargetID] {
				inDegree[e.TargetID]--
			}
		}
	}

	return ordered
}
