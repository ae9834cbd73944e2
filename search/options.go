package search

// RolloutPolicy chooses an action during rollout given the current
// state key and the number of legal actions there. Any error it
// returns propagates out of Run wrapped in a *werrors.PolicyError,
// which keeps the original message and unwraps to the original error
// (spec.md §4.6, §9).
type RolloutPolicy func(state StateKey, numActions int) (ActionKey, error)

// RunOption configures a single Run call's rollout action-selection.
type RunOption func(*runConfig)

type runConfig struct {
	rolloutPolicy RolloutPolicy
	rolloutAction *ActionKey
}

// WithRolloutPolicy installs a caller-supplied rollout policy. It
// takes precedence over WithRolloutAction if both are supplied,
// per spec.md §4.6(3).
func WithRolloutPolicy(policy RolloutPolicy) RunOption {
	return func(c *runConfig) {
		c.rolloutPolicy = policy
	}
}

// WithRolloutAction fixes rollout to a single action index, clamped to
// [0, numActions) at each rollout step. Used only when no rollout
// policy is supplied.
func WithRolloutAction(action ActionKey) RunOption {
	return func(c *runConfig) {
		c.rolloutAction = &action
	}
}
