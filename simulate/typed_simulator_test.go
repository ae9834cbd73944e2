package simulate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// counterState is the Go analogue of the reference binding's
// CounterDomain fixture: a two-action domain that always terminates
// after a single step, with action 1 paying a higher reward than
// action 0.
type counterState struct {
	count int
	phase string
}

type counterDomain struct{}

func (counterDomain) StartState() any {
	return counterState{count: 0, phase: "running"}
}

func (counterDomain) StateToken(state any) (string, error) {
	s := state.(counterState)
	return fmt.Sprintf("%d:%s", s.count, s.phase), nil
}

func (d counterDomain) IsTerminal(state any) bool {
	return state.(counterState).phase == "finished"
}

func (d counterDomain) NumActions(state any) int {
	if d.IsTerminal(state) {
		return 0
	}
	return 2
}

func (d counterDomain) Step(state any, action ActionKey, _ float64) (any, float64, bool) {
	s := state.(counterState)
	if d.IsTerminal(s) {
		return s, 0.0, true
	}
	reward := 1.0
	if action == 1 {
		reward = 3.0
	}
	return counterState{count: s.count + 1, phase: "finished"}, reward, true
}

type untokenizableDomain struct{}

func (untokenizableDomain) StartState() any { return 0 }
func (untokenizableDomain) StateToken(any) (string, error) {
	return "", fmt.Errorf("state is not str or bytes")
}
func (untokenizableDomain) IsTerminal(any) bool    { return true }
func (untokenizableDomain) NumActions(any) int     { return 0 }
func (untokenizableDomain) Step(s any, _ ActionKey, _ float64) (any, float64, bool) {
	return s, 0.0, true
}

func TestTypedSimulatorStepsThroughDomain(t *testing.T) {
	sim, err := NewTypedSimulator(counterDomain{}, 11)
	require.NoError(t, err)

	start := sim.StartStateKey()
	terminal, err := sim.IsTerminalByKey(start)
	require.NoError(t, err)
	require.False(t, terminal)

	next, reward, stepTerminal, err := sim.StepByKey(start, 1)
	require.NoError(t, err)
	require.True(t, stepTerminal)
	require.Equal(t, 3.0, reward)

	terminal, err = sim.IsTerminalByKey(next)
	require.NoError(t, err)
	require.True(t, terminal)

	n, err := sim.NumActionsByKey(next)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestTypedSimulatorRejectsInvalidStartToken(t *testing.T) {
	_, err := NewTypedSimulator(untokenizableDomain{}, 1)
	require.Error(t, err)
}

func TestTypedSimulatorInterningIsIdempotentAcrossEqualTokens(t *testing.T) {
	sim, err := NewTypedSimulator(counterDomain{}, 5, WithTokenCollisionCheck())
	require.NoError(t, err)

	start := sim.StartStateKey()
	a, _, _, err := sim.StepByKey(start, 0)
	require.NoError(t, err)

	sim2, err := NewTypedSimulator(counterDomain{}, 5, WithTokenCollisionCheck())
	require.NoError(t, err)
	b, _, _, err := sim2.StepByKey(sim2.StartStateKey(), 0)
	require.NoError(t, err)

	require.Equal(t, a, b, "independent simulators over an equivalent domain should intern equal states to equal keys")
}

func TestTypedSimulatorStepFromTerminalFails(t *testing.T) {
	sim, err := NewTypedSimulator(counterDomain{}, 1)
	require.NoError(t, err)

	start := sim.StartStateKey()
	next, _, _, err := sim.StepByKey(start, 0)
	require.NoError(t, err)

	_, _, _, err = sim.StepByKey(next, 0)
	require.Error(t, err)
}

func TestTypedSimulatorOutOfRangeActionFails(t *testing.T) {
	sim, err := NewTypedSimulator(counterDomain{}, 1)
	require.NoError(t, err)

	_, _, _, err = sim.StepByKey(sim.StartStateKey(), 7)
	require.Error(t, err)
}
