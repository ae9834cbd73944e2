package simulate

import (
	"fmt"

	"github.com/signalnine/weavetree-go/intern"
	"github.com/signalnine/weavetree-go/rng"
	"github.com/signalnine/weavetree-go/werrors"
)

// Domain is the contract a caller implements to search over its own
// state representation instead of a declarative CompiledMdp. All
// methods take the domain's own state payload (whatever StartState
// returns) and never see an interned Key.
type Domain interface {
	// StartState returns the domain's initial state payload.
	StartState() any

	// StateToken derives a stable, opaque token for state — two
	// payloads that represent the same state must produce the same
	// token. Returning an error rejects state as untokenizable (the
	// Go analogue of the reference binding's str/bytes type check).
	StateToken(state any) (string, error)

	// IsTerminal reports whether state has no further actions.
	IsTerminal(state any) bool

	// NumActions returns the number of legal actions at state; 0 for
	// terminal and absorbing-dead-end states alike.
	NumActions(state any) int

	// Step samples the outcome of taking action at state. sample is a
	// uniform draw in [0, 1) supplied by the simulator's own RNG
	// stream, so a domain's internal randomness (if any) still flows
	// through the simulator's seed.
	Step(state any, action ActionKey, sample float64) (next any, reward float64, terminal bool)
}

// TypedOption configures a TypedSimulator at construction.
type TypedOption func(*typedConfig)

type typedConfig struct {
	checkCollisions bool
}

// WithTokenCollisionCheck enables the interner's collision check: two
// states that tokenize identically but are not themselves equal fail
// fast with a *werrors.DomainError instead of silently aliasing.
func WithTokenCollisionCheck() TypedOption {
	return func(c *typedConfig) {
		c.checkCollisions = true
	}
}

// TypedSimulator is a Simulator over a caller-supplied Domain. State
// payloads are interned to dense keys on first sight so the search
// package can address them the same way it addresses a CompiledMdp's
// states.
type TypedSimulator struct {
	domain   Domain
	stream   *rng.Stream
	interner *intern.Interner
	startKey StateKey
}

// NewTypedSimulator wraps domain with a fresh seeded RNG stream and
// interns its start state eagerly, so a malformed StateToken fails at
// construction rather than partway through a search.
func NewTypedSimulator(domain Domain, seed uint64, opts ...TypedOption) (*TypedSimulator, error) {
	cfg := typedConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	ts := &TypedSimulator{
		domain:   domain,
		stream:   rng.New(seed),
		interner: intern.New(cfg.checkCollisions),
	}

	start := domain.StartState()
	token, err := domain.StateToken(start)
	if err != nil {
		return nil, &werrors.DomainError{Message: "start state produced an invalid token", Cause: err}
	}

	key, err := ts.interner.Intern(start, token)
	if err != nil {
		return nil, err
	}
	ts.startKey = key

	return ts, nil
}

func (ts *TypedSimulator) StartStateKey() StateKey {
	return ts.startKey
}

func (ts *TypedSimulator) payloadFor(key StateKey) (any, error) {
	payload, _, ok := ts.interner.Payload(key)
	if !ok {
		return nil, &werrors.DomainError{Message: fmt.Sprintf("unknown state key %d", key)}
	}
	return payload, nil
}

func (ts *TypedSimulator) IsTerminalByKey(key StateKey) (bool, error) {
	payload, err := ts.payloadFor(key)
	if err != nil {
		return false, err
	}
	return ts.domain.IsTerminal(payload), nil
}

func (ts *TypedSimulator) NumActionsByKey(key StateKey) (int, error) {
	payload, err := ts.payloadFor(key)
	if err != nil {
		return 0, err
	}
	return ts.domain.NumActions(payload), nil
}

func (ts *TypedSimulator) UniformAction(numActions int) ActionKey {
	return ts.stream.Intn(numActions)
}

func (ts *TypedSimulator) StepByKey(key StateKey, action ActionKey) (StateKey, float64, bool, error) {
	payload, err := ts.payloadFor(key)
	if err != nil {
		return 0, 0, false, err
	}
	if ts.domain.IsTerminal(payload) {
		return 0, 0, false, &werrors.DomainError{Message: fmt.Sprintf("cannot step from terminal state key %d", key)}
	}

	numActions := ts.domain.NumActions(payload)
	if action < 0 || action >= numActions {
		return 0, 0, false, &werrors.DomainError{
			Message: fmt.Sprintf("action %d out of range [0, %d) for state key %d", action, numActions, key),
		}
	}

	sample := ts.stream.Float64()
	next, reward, terminal := ts.domain.Step(payload, action, sample)

	token, err := ts.domain.StateToken(next)
	if err != nil {
		return 0, 0, false, &werrors.DomainError{Message: "step produced a state with an invalid token", Cause: err}
	}

	nextKey, err := ts.interner.Intern(next, token)
	if err != nil {
		return 0, 0, false, err
	}

	return nextKey, reward, terminal, nil
}
