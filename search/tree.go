package search

import (
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/signalnine/weavetree-go/simulate"
	"github.com/signalnine/weavetree-go/werrors"
)

// Tree is a rooted arena of Nodes. A single Run mutates it; the tree
// remains queryable for statistics afterward, including after a
// mid-run failure (spec.md §7: tree is not rewound on error).
type Tree struct {
	nodes []Node
	root  NodeId
}

// NewTree allocates a root node at (rootKey, rootTerminal). The tree
// has no edges until the root is first visited by a Run — a
// Simulator is required to know how many actions it has, and none
// exists yet at construction time.
func NewTree(rootKey StateKey, rootTerminal bool) *Tree {
	return &Tree{
		nodes: []Node{{StateKey: rootKey, Terminal: rootTerminal}},
		root:  0,
	}
}

// ensureEdges lazily populates a node's edge set from a live
// Simulator the first time the node is visited. A non-terminal state
// that reports zero actions is upgraded to terminal here, per
// spec.md §4.4's "non-terminal states with empty action lists ...
// are treated as terminal by the search engine."
func (t *Tree) ensureEdges(sim simulate.Simulator, id NodeId) error {
	n := &t.nodes[id]
	if n.edgesReady {
		return nil
	}
	if n.Terminal {
		n.edgesReady = true
		return nil
	}

	numActions, err := sim.NumActionsByKey(n.StateKey)
	if err != nil {
		return err
	}
	if numActions == 0 {
		n.Terminal = true
		n.edgesReady = true
		return nil
	}

	edges := make([]Edge, numActions)
	for i := range edges {
		edges[i] = Edge{Action: i, Child: noChild}
	}
	n.Edges = edges
	n.edgesReady = true
	return nil
}

func (t *Tree) allocNode(key StateKey, terminal bool) NodeId {
	t.nodes = append(t.nodes, Node{StateKey: key, Terminal: terminal})
	return len(t.nodes) - 1
}

// Run executes config.Iterations selection/expansion/rollout/backprop
// cycles against sim. On error from the simulator or a rollout
// policy, the run aborts immediately and the error propagates; a
// simulator error is returned unchanged, a rollout policy's error is
// wrapped in a *werrors.PolicyError that keeps its message and
// unwraps to it. Tree mutations already applied are left in place.
func (t *Tree) Run(sim simulate.Simulator, config Config, opts ...RunOption) (RunResult, error) {
	if err := config.Validate(); err != nil {
		return RunResult{}, err
	}

	var rc runConfig
	for _, opt := range opts {
		opt(&rc)
	}

	result := RunResult{RunID: uuid.New()}

	for i := uint32(0); i < config.Iterations; i++ {
		if err := t.runIteration(sim, config, &rc); err != nil {
			log.Warn().
				Str("run_id", result.RunID.String()).
				Uint32("iteration", i).
				Err(err).
				Msg("search run aborted")
			return result, err
		}
		result.IterationsCompleted++
	}

	return result, nil
}

// traversalStep records one followed edge: the node it left from, the
// action taken, and the reward that draw produced.
type traversalStep struct {
	node   NodeId
	action ActionKey
	reward float64
}

func (t *Tree) runIteration(sim simulate.Simulator, cfg Config, rc *runConfig) error {
	var path []traversalStep
	node := t.root
	steps := uint32(0)

	// 1. Selection.
	for {
		n := &t.nodes[node]
		if n.Terminal || !withinHorizon(cfg, steps) {
			break
		}
		if err := t.ensureEdges(sim, node); err != nil {
			return err
		}
		n = &t.nodes[node]
		if n.Terminal || !n.isFullyExpanded() {
			break
		}

		action := t.selectUCB(node, cfg.C)
		_, reward, _, err := sim.StepByKey(n.StateKey, action)
		if err != nil {
			return err
		}

		path = append(path, traversalStep{node: node, action: action, reward: reward})
		node = n.Edges[action].Child
		steps++
	}

	// 2. Expansion.
	n := &t.nodes[node]
	if !n.Terminal && withinHorizon(cfg, steps) {
		if err := t.ensureEdges(sim, node); err != nil {
			return err
		}
		n = &t.nodes[node]
		if !n.Terminal {
			if action := n.firstUntriedAction(); action != -1 {
				next, reward, terminal, err := sim.StepByKey(n.StateKey, action)
				if err != nil {
					return err
				}
				childID := t.allocNode(next, terminal)
				t.nodes[node].Edges[action].Child = childID

				path = append(path, traversalStep{node: node, action: action, reward: reward})
				node = childID
				steps++
			}
		}
	}

	// 3. Rollout, from the reached leaf.
	rolloutRewards, err := t.rollout(sim, node, cfg, rc, steps)
	if err != nil {
		return err
	}

	// 4. Backpropagation.
	rewards := make([]float64, 0, len(path)+len(rolloutRewards))
	for _, s := range path {
		rewards = append(rewards, s.reward)
	}
	rewards = append(rewards, rolloutRewards...)

	returns := suffixReturns(rewards, cfg.Gamma, cfg.ReturnType)

	t.nodes[t.root].Visits++
	for i, s := range path {
		edge := &t.nodes[s.node].Edges[s.action]
		edge.Visits++
		edge.TotalValue += returns[i]
		t.nodes[edge.Child].Visits++
	}

	return nil
}

// withinHorizon reports whether a further step is permitted at the
// given step count: both max_steps and, if set, fixed_horizon_steps
// must allow it; terminality is checked separately by the caller.
func withinHorizon(cfg Config, steps uint32) bool {
	if steps >= cfg.MaxSteps {
		return false
	}
	if cfg.FixedHorizonSteps != nil && steps >= *cfg.FixedHorizonSteps {
		return false
	}
	return true
}

// selectUCB picks the child edge maximizing UCB1, ties broken by the
// lower action index, per spec.md §4.6(1).
func (t *Tree) selectUCB(node NodeId, c float64) ActionKey {
	n := &t.nodes[node]
	best := 0
	bestScore := math.Inf(-1)
	for i, e := range n.Edges {
		score := ucb1(e, n.Visits, c)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

func ucb1(e Edge, parentVisits uint64, c float64) float64 {
	if e.Visits == 0 {
		return math.Inf(1)
	}
	exploitation := e.TotalValue / float64(e.Visits)
	exploration := c * math.Sqrt(math.Log(float64(parentVisits))/float64(e.Visits))
	return exploitation + exploration
}

// rollout simulates forward from node's state until terminal,
// max_steps, or fixed_horizon_steps (all measured from the root), per
// spec.md §4.6(3). It never allocates arena nodes — rollout states are
// ephemeral and contribute only their rewards to the backpropagated
// return.
func (t *Tree) rollout(sim simulate.Simulator, node NodeId, cfg Config, rc *runConfig, stepsSoFar uint32) ([]float64, error) {
	var rewards []float64

	key := t.nodes[node].StateKey
	terminal := t.nodes[node].Terminal
	steps := stepsSoFar

	for {
		if terminal || !withinHorizon(cfg, steps) {
			break
		}
		numActions, err := sim.NumActionsByKey(key)
		if err != nil {
			return nil, err
		}
		if numActions == 0 {
			break
		}

		action, err := selectRolloutAction(sim, rc, key, numActions)
		if err != nil {
			return nil, err
		}

		next, reward, nextTerminal, err := sim.StepByKey(key, action)
		if err != nil {
			return nil, err
		}

		rewards = append(rewards, reward)
		key = next
		terminal = nextTerminal
		steps++
	}

	return rewards, nil
}

func selectRolloutAction(sim simulate.Simulator, rc *runConfig, state StateKey, numActions int) (ActionKey, error) {
	if rc.rolloutPolicy != nil {
		action, err := rc.rolloutPolicy(state, numActions)
		if err != nil {
			return 0, &werrors.PolicyError{Cause: err}
		}
		return action, nil
	}

	if rc.rolloutAction != nil {
		action := *rc.rolloutAction
		if action < 0 {
			action = 0
		}
		if action >= numActions {
			action = numActions - 1
		}
		return action, nil
	}

	return sim.UniformAction(numActions), nil
}

// suffixReturns computes, for each index i in rewards, the
// return-to-go G_i = the accumulated return starting at rewards[i]
// with time re-zeroed at i — exactly the "remaining discounted sum
// from that step" spec.md §4.6(4) assigns to the edge at position i.
func suffixReturns(rewards []float64, gamma float64, returnType string) []float64 {
	out := make([]float64, len(rewards))
	var running float64
	for i := len(rewards) - 1; i >= 0; i-- {
		switch returnType {
		case ReturnUndiscounted:
			running = rewards[i] + running
		default:
			running = rewards[i] + gamma*running
		}
		out[i] = running
	}
	return out
}
