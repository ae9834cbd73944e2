package simulate

import (
	"testing"

	"github.com/signalnine/weavetree-go/mdp"
	"github.com/stretchr/testify/require"
)

const counterMdpYAML = `
start: s0
states:
  - id: s0
    actions:
      - id: a0
        outcomes:
          - next: s1
            prob: 0.7
            reward: 1.0
          - next: s0
            prob: 0.3
            reward: 0.0
      - id: a1
        outcomes:
          - next: s2
            prob: 1.0
            reward: -0.2
  - id: s1
    terminal: true
  - id: s2
    terminal: false
    actions: []
`

func mustCompile(t *testing.T) *mdp.CompiledMdp {
	t.Helper()
	compiled, err := mdp.CompileYAMLString(counterMdpYAML)
	require.NoError(t, err)
	return compiled
}

func TestMdpSimulatorSameSeedSamplesIdenticalTrajectory(t *testing.T) {
	compiled := mustCompile(t)

	trace := func(seed uint64) []StateKey {
		sim := NewMdpSimulator(compiled, seed)
		key := sim.StartStateKey()
		var keys []StateKey
		for i := 0; i < 20; i++ {
			terminal, err := sim.IsTerminalByKey(key)
			require.NoError(t, err)
			if terminal {
				break
			}
			n, err := sim.NumActionsByKey(key)
			require.NoError(t, err)
			if n == 0 {
				break
			}
			next, _, _, err := sim.StepByKey(key, 0)
			require.NoError(t, err)
			keys = append(keys, next)
			key = next
		}
		return keys
	}

	a := trace(42)
	b := trace(42)
	require.Equal(t, a, b)
}

func TestMdpSimulatorStepOutOfRangeAction(t *testing.T) {
	compiled := mustCompile(t)
	sim := NewMdpSimulator(compiled, 1)

	_, _, _, err := sim.StepByKey(sim.StartStateKey(), 5)
	require.Error(t, err)
}

func TestMdpSimulatorStepFromTerminalFails(t *testing.T) {
	compiled := mustCompile(t)
	sim := NewMdpSimulator(compiled, 1)

	s1, err := indexOfState(compiled, "s1")
	require.NoError(t, err)

	_, _, _, err = sim.StepByKey(s1, 0)
	require.Error(t, err)
}

func indexOfState(compiled *mdp.CompiledMdp, id string) (StateKey, error) {
	for i := 0; i < compiled.StateCount(); i++ {
		got, err := compiled.StateID(i)
		if err != nil {
			return 0, err
		}
		if got == id {
			return i, nil
		}
	}
	return 0, nil
}

func TestMdpSimulatorEmptyActionsNonTerminalReportsZeroActions(t *testing.T) {
	compiled := mustCompile(t)
	sim := NewMdpSimulator(compiled, 1)

	s2, err := indexOfState(compiled, "s2")
	require.NoError(t, err)

	n, err := sim.NumActionsByKey(s2)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	terminal, err := sim.IsTerminalByKey(s2)
	require.NoError(t, err)
	require.False(t, terminal)
}
