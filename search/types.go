// Package search implements the MCTS tree: an arena of nodes
// addressed by dense NodeId, planning over a simulate.Simulator via
// selection, expansion, rollout and backpropagation.
package search

import "github.com/signalnine/weavetree-go/simulate"

// StateKey and ActionKey mirror the simulate package's addressing so
// callers never convert between them.
type StateKey = simulate.StateKey
type ActionKey = simulate.ActionKey

// NodeId is a dense arena index. noChild marks an edge not yet
// expanded.
type NodeId = int

const noChild NodeId = -1

// Edge is one action's statistics bucket out of a node. child is
// populated on first expansion; until then the action is untried.
type Edge struct {
	Action     ActionKey
	Child      NodeId
	Visits     uint64
	TotalValue float64
}

// Node is one arena entry. Nodes never hold a parent pointer —
// backpropagation walks the path collected during descent instead
// (spec.md §9), so the arena stays a pure forward DAG of indices.
type Node struct {
	StateKey StateKey
	Terminal bool
	Visits   uint64
	Edges    []Edge

	// edgesReady is set once Edges has been populated (or the node has
	// been confirmed terminal/actionless) by a live Simulator. It can't
	// happen at NewTree time — no Simulator exists yet — so it happens
	// lazily on first visit during Run.
	edgesReady bool
}

func (n *Node) isFullyExpanded() bool {
	for _, e := range n.Edges {
		if e.Child == noChild {
			return false
		}
	}
	return true
}

// firstUntriedAction returns the lowest-indexed action with no child
// yet, or -1 if none remain.
func (n *Node) firstUntriedAction() int {
	for i, e := range n.Edges {
		if e.Child == noChild {
			return i
		}
	}
	return -1
}
