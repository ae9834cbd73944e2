// Package mdp compiles a declarative Markov Decision Process document
// into a validated, index-addressed CompiledMdp ready for sampling.
package mdp

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/signalnine/weavetree-go/werrors"
)

// StateKey is a dense integer in [0, StateCount), stable for the
// lifetime of a single CompiledMdp.
type StateKey = int

// ActionKey is a dense integer in [0, num_actions(state)), indexed per
// state — two different states may reuse the same integer to mean
// different actions.
type ActionKey = int

// Outcome is one possible transition out of an action: the next
// state, its probability, and the reward received on taking it.
type Outcome struct {
	Next   StateKey
	Prob   float64
	Reward float64
}

// ActionSpec is a named action and its outcome distribution. Outcome
// probabilities sum to ~1.0 within 1e-6 once compiled; empty Outcomes
// never survives compilation.
type ActionSpec struct {
	ID       string
	Outcomes []Outcome
}

// StateSpec is a single compiled state: its declared id, whether it is
// terminal, and its actions (empty for terminal states, and legally
// empty — an absorbing dead end — for some non-terminal states too).
type StateSpec struct {
	ID       string
	Terminal bool
	Actions  []ActionSpec
}

// CompiledMdp is a validated, index-addressed MDP: every reference
// between states has already been rewritten from a string id to a
// StateKey, and every invariant in spec §4.1 has been checked.
type CompiledMdp struct {
	States []StateSpec
	Start  StateKey

	// CompileID correlates this compiled MDP across logs for the
	// lifetime of the host process that compiled it.
	CompileID uuid.UUID
}

// StateCount returns the number of compiled states.
func (m *CompiledMdp) StateCount() int {
	return len(m.States)
}

// StartStateKey returns the compiled start state's key.
func (m *CompiledMdp) StartStateKey() StateKey {
	return m.Start
}

// StateID returns the declared id of the state at key.
func (m *CompiledMdp) StateID(key StateKey) (string, error) {
	if key < 0 || key >= len(m.States) {
		return "", keyRangeError(key, len(m.States))
	}
	return m.States[key].ID, nil
}

// IsTerminal reports whether the state at key is terminal. A
// non-terminal state with no actions is NOT reported terminal here —
// §4.3 says the search layer, not the compiled model, treats it as
// terminal for search purposes.
func (m *CompiledMdp) IsTerminal(key StateKey) (bool, error) {
	if key < 0 || key >= len(m.States) {
		return false, keyRangeError(key, len(m.States))
	}
	return m.States[key].Terminal, nil
}

// NumActions returns the number of actions declared for the state at
// key, or an error if key is out of range.
func (m *CompiledMdp) NumActions(key StateKey) (int, error) {
	if key < 0 || key >= len(m.States) {
		return 0, keyRangeError(key, len(m.States))
	}
	return len(m.States[key].Actions), nil
}

func keyRangeError(key, count int) error {
	return &werrors.DomainError{
		Message: fmt.Sprintf("state key %d out of range [0, %d)", key, count),
	}
}
