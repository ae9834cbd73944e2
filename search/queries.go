package search

import "github.com/signalnine/weavetree-go/werrors"

// BestRootActionByVisits returns the root's most-visited action, ties
// broken by the lower action index. Errors if the root has no edges —
// either it is terminal (or has no actions) or no Run iteration has
// populated its edges yet (no Run, zero iterations, or max_steps 0).
func (t *Tree) BestRootActionByVisits() (ActionKey, error) {
	root := &t.nodes[t.root]
	if len(root.Edges) == 0 {
		return 0, &werrors.DomainError{Message: "root has no actions to recommend"}
	}

	best := 0
	bestVisits := root.Edges[0].Visits
	for i, e := range root.Edges {
		if e.Visits > bestVisits {
			bestVisits = e.Visits
			best = i
		}
	}
	return best, nil
}

// BestRootActionByValue returns the root action maximizing
// total_value / visits among edges with visits > 0, ties broken by
// the lower action index. Errors if no root edge has been visited.
func (t *Tree) BestRootActionByValue() (ActionKey, error) {
	root := &t.nodes[t.root]

	best := -1
	bestMean := 0.0
	for i, e := range root.Edges {
		if e.Visits == 0 {
			continue
		}
		mean := e.TotalValue / float64(e.Visits)
		if best == -1 || mean > bestMean {
			bestMean = mean
			best = i
		}
	}
	if best == -1 {
		return 0, &werrors.DomainError{Message: "no root action has been visited yet"}
	}
	return best, nil
}
