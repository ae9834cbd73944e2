// Package simulate adapts a CompiledMdp, or a caller-supplied typed
// domain, to the polymorphic Simulator capability the search package
// plans over.
package simulate

import "github.com/signalnine/weavetree-go/mdp"

// StateKey and ActionKey alias the mdp package's dense integer types;
// a Simulator over a typed domain addresses interned keys the same
// way one over a CompiledMdp addresses compiled ones.
type StateKey = mdp.StateKey
type ActionKey = mdp.ActionKey

// Simulator is the polymorphic handle the search package plans over.
// It is implemented by MdpSimulator and TypedSimulator and is owned
// exclusively by one Run for its duration (spec §5) — no
// implementation here is safe for concurrent use.
type Simulator interface {
	// StartStateKey returns the key of the simulator's start state.
	StartStateKey() StateKey

	// IsTerminalByKey reports the raw terminality of the state at key,
	// as declared by the CompiledMdp or the typed domain. It does NOT
	// account for non-terminal states with zero legal actions — the
	// search package treats those as terminal for search purposes by
	// also consulting NumActionsByKey, per spec §4.3/§4.4.
	IsTerminalByKey(key StateKey) (bool, error)

	// NumActionsByKey returns the number of legal actions at key; 0
	// for terminal states (and for empty-action absorbing states).
	NumActionsByKey(key StateKey) (int, error)

	// StepByKey samples one transition from (key, action), consuming
	// exactly one RNG draw. Returns a *werrors.DomainError if action
	// is out of range or key is terminal.
	StepByKey(key StateKey, action ActionKey) (next StateKey, reward float64, terminal bool, err error)

	// UniformAction draws an action uniformly from [0, numActions) using
	// the simulator's own owned RNG stream. The search package's default
	// rollout policy uses this rather than an RNG of its own, so
	// reproducibility still derives solely from the simulator's seed
	// (spec.md §4.6's rollout precedence, §9's "no process-wide
	// generator").
	UniformAction(numActions int) ActionKey
}
