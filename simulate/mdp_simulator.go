package simulate

import (
	"fmt"

	"github.com/signalnine/weavetree-go/mdp"
	"github.com/signalnine/weavetree-go/rng"
	"github.com/signalnine/weavetree-go/werrors"
)

// MdpSimulator is a Simulator over a compiled, declarative MDP. It
// owns its own RNG stream: two MdpSimulators built from the same
// CompiledMdp and the same seed sample identical trajectories, per
// spec.md §5.
type MdpSimulator struct {
	compiled *mdp.CompiledMdp
	stream   *rng.Stream
}

// NewMdpSimulator wraps compiled with a fresh, seeded RNG stream.
func NewMdpSimulator(compiled *mdp.CompiledMdp, seed uint64) *MdpSimulator {
	return &MdpSimulator{
		compiled: compiled,
		stream:   rng.New(seed),
	}
}

func (s *MdpSimulator) StartStateKey() StateKey {
	return s.compiled.StartStateKey()
}

func (s *MdpSimulator) IsTerminalByKey(key StateKey) (bool, error) {
	return s.compiled.IsTerminal(key)
}

func (s *MdpSimulator) NumActionsByKey(key StateKey) (int, error) {
	return s.compiled.NumActions(key)
}

func (s *MdpSimulator) UniformAction(numActions int) ActionKey {
	return s.stream.Intn(numActions)
}

func (s *MdpSimulator) StepByKey(key StateKey, action ActionKey) (StateKey, float64, bool, error) {
	terminal, err := s.compiled.IsTerminal(key)
	if err != nil {
		return 0, 0, false, err
	}
	if terminal {
		return 0, 0, false, &werrors.DomainError{Message: fmt.Sprintf("cannot step from terminal state key %d", key)}
	}

	numActions, err := s.compiled.NumActions(key)
	if err != nil {
		return 0, 0, false, err
	}
	if action < 0 || action >= numActions {
		return 0, 0, false, &werrors.DomainError{
			Message: fmt.Sprintf("action %d out of range [0, %d) for state key %d", action, numActions, key),
		}
	}

	spec := s.compiled.States[key].Actions[action]
	weights := make([]float64, len(spec.Outcomes))
	for i, o := range spec.Outcomes {
		weights[i] = o.Prob
	}

	chosen := spec.Outcomes[s.stream.ChooseByWeights(weights)]
	terminalNext, err := s.compiled.IsTerminal(chosen.Next)
	if err != nil {
		return 0, 0, false, err
	}
	return chosen.Next, chosen.Reward, terminalNext, nil
}
