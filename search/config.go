package search

import (
	"github.com/google/uuid"
	"github.com/signalnine/weavetree-go/werrors"
)

// ReturnType selects how rewards along a path are accumulated into a
// backpropagated return.
const (
	ReturnDiscounted   = "discounted"
	ReturnUndiscounted = "undiscounted"
)

// Config is a SearchTree run's tunable parameters, spec.md §4.6.
type Config struct {
	// Iterations is the number of selection->backprop cycles this Run
	// performs. 0 is legal and completes zero iterations.
	Iterations uint32

	// C is the UCB1 exploration constant; 0 disables exploration.
	C float64

	// Gamma is the per-step discount factor, must be in [0, 1].
	Gamma float64

	// MaxSteps hard-caps selection+rollout steps combined, per iteration.
	MaxSteps uint32

	// ReturnType is ReturnDiscounted or ReturnUndiscounted.
	ReturnType string

	// FixedHorizonSteps, if non-nil, cuts every iteration's episode at
	// exactly this many steps from the root, regardless of terminality.
	FixedHorizonSteps *uint32
}

// Validate reports a *werrors.ConfigError for any field outside its
// legal range or enumerated set. Iterations == 0 and MaxSteps == 0 are
// both legal (spec.md §8's boundary behaviors).
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return &werrors.ConfigError{Field: "gamma", Message: "must be in [0, 1]"}
	}
	if c.ReturnType != ReturnDiscounted && c.ReturnType != ReturnUndiscounted {
		return &werrors.ConfigError{Field: "return_type", Message: "must be \"discounted\" or \"undiscounted\""}
	}
	return nil
}

// RunResult reports the outcome of one Run call.
type RunResult struct {
	IterationsCompleted uint32

	// RunID correlates this run's log lines across a long-lived host
	// process; it carries no semantic meaning for the search itself.
	RunID uuid.UUID
}
