package mdp

import (
	"bytes"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/signalnine/weavetree-go/werrors"
	"gopkg.in/yaml.v3"
)

// probTolerance is the accepted drift of an action's outcome
// probabilities from 1.0, per spec.md §3/§4.1. Callers should not
// depend on a tighter bound (spec.md §8).
const probTolerance = 1e-6

// topLevelDoc is decoded leniently: unknown top-level fields (e.g. a
// future `metadata:` block) are ignored, per spec.md §6.
type topLevelDoc struct {
	Version *int      `yaml:"version"`
	Start   string    `yaml:"start"`
	States  yaml.Node `yaml:"states"`
}

// Nested shapes are decoded strictly (unknown nested fields are a
// validation error, per spec.md §6), via a second decode pass scoped
// to the `states` subtree.
type rawOutcome struct {
	Next   string  `yaml:"next"`
	Prob   float64 `yaml:"prob"`
	Reward float64 `yaml:"reward"`
}

type rawAction struct {
	ID       string       `yaml:"id"`
	Outcomes []rawOutcome `yaml:"outcomes"`
}

type rawState struct {
	ID       string      `yaml:"id"`
	Terminal bool        `yaml:"terminal"`
	Actions  []rawAction `yaml:"actions"`
}

// CompileYAMLString parses and compiles a declarative MDP document,
// returning a validated CompiledMdp or a *werrors.ParseError /
// *werrors.ValidationError.
func CompileYAMLString(text string) (*CompiledMdp, error) {
	var doc topLevelDoc
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &werrors.ParseError{Message: "malformed YAML document", Cause: err}
	}

	statesBytes, err := yaml.Marshal(&doc.States)
	if err != nil {
		return nil, &werrors.ParseError{Message: "malformed states section", Cause: err}
	}

	var states []rawState
	dec := yaml.NewDecoder(bytes.NewReader(statesBytes))
	dec.KnownFields(true)
	if err := dec.Decode(&states); err != nil {
		return nil, singleFieldError("states", fmt.Sprintf("unknown or malformed field: %v", err))
	}

	return compile(doc.Start, states)
}

func compile(start string, states []rawState) (*CompiledMdp, error) {
	indexByID := make(map[string]StateKey, len(states))
	for i, s := range states {
		if _, exists := indexByID[s.ID]; !exists {
			indexByID[s.ID] = i
		}
	}

	// Stage 1: start is present and references a declared state.
	if start == "" {
		return nil, singleFieldError("start", "start state id is required")
	}
	startKey, ok := indexByID[start]
	if !ok {
		return nil, singleFieldError("start", fmt.Sprintf("references undeclared state %q", start))
	}

	// Stage 2: all state ids unique; all action ids unique within a state.
	if verr := checkUniqueIDs(states); verr.HasErrors() {
		return nil, verr
	}

	// Stage 3: outcome well-formedness for non-terminal, non-empty-action states.
	if verr := checkOutcomes(states, indexByID); verr.HasErrors() {
		return nil, verr
	}

	// Stage 4: terminal states declare no actions.
	if verr := checkTerminalsHaveNoActions(states); verr.HasErrors() {
		return nil, verr
	}

	compiled := &CompiledMdp{
		States:    make([]StateSpec, len(states)),
		Start:     startKey,
		CompileID: uuid.New(),
	}
	for i, s := range states {
		spec := StateSpec{
			ID:       s.ID,
			Terminal: s.Terminal,
			Actions:  make([]ActionSpec, len(s.Actions)),
		}
		for j, a := range s.Actions {
			outcomes := make([]Outcome, len(a.Outcomes))
			for k, o := range a.Outcomes {
				outcomes[k] = Outcome{
					Next:   indexByID[o.Next],
					Prob:   o.Prob,
					Reward: o.Reward,
				}
			}
			spec.Actions[j] = ActionSpec{ID: a.ID, Outcomes: outcomes}
		}
		compiled.States[i] = spec
	}

	log.Debug().
		Str("compile_id", compiled.CompileID.String()).
		Int("state_count", len(compiled.States)).
		Str("start", start).
		Msg("compiled mdp")

	return compiled, nil
}

func checkUniqueIDs(states []rawState) *werrors.ValidationError {
	var verr werrors.ValidationError

	seenStates := make(map[string]bool, len(states))
	for i, s := range states {
		if seenStates[s.ID] {
			verr.Add(fmt.Sprintf("states[%d].id", i), fmt.Sprintf("duplicate state id %q", s.ID))
		}
		seenStates[s.ID] = true

		seenActions := make(map[string]bool, len(s.Actions))
		for j, a := range s.Actions {
			if seenActions[a.ID] {
				verr.Add(fmt.Sprintf("states[%d].actions[%d].id", i, j), fmt.Sprintf("duplicate action id %q in state %q", a.ID, s.ID))
			}
			seenActions[a.ID] = true
		}
	}

	return &verr
}

func checkOutcomes(states []rawState, indexByID map[string]StateKey) *werrors.ValidationError {
	var verr werrors.ValidationError

	for i, s := range states {
		if s.Terminal || len(s.Actions) == 0 {
			continue
		}
		for j, a := range s.Actions {
			field := fmt.Sprintf("states[%d].actions[%d]", i, j)
			if len(a.Outcomes) == 0 {
				verr.Add(field+".outcomes", fmt.Sprintf("action %q has no outcomes", a.ID))
				continue
			}

			sum := 0.0
			for k, o := range a.Outcomes {
				if _, ok := indexByID[o.Next]; !ok {
					verr.Add(fmt.Sprintf("%s.outcomes[%d].next", field, k), fmt.Sprintf("references undeclared state %q", o.Next))
				}
				if o.Prob < 0 || o.Prob > 1 {
					verr.Add(fmt.Sprintf("%s.outcomes[%d].prob", field, k), fmt.Sprintf("probability %v out of range [0, 1]", o.Prob))
				}
				sum += o.Prob
			}
			if math.Abs(sum-1.0) > probTolerance {
				verr.Add(field+".outcomes", fmt.Sprintf("outcome probabilities sum to %v, want 1.0 (+/- %v)", sum, probTolerance))
			}
		}
	}

	return &verr
}

func checkTerminalsHaveNoActions(states []rawState) *werrors.ValidationError {
	var verr werrors.ValidationError

	for i, s := range states {
		if s.Terminal && len(s.Actions) > 0 {
			verr.Add(fmt.Sprintf("states[%d].actions", i), fmt.Sprintf("terminal state %q declares actions", s.ID))
		}
	}

	return &verr
}

func singleFieldError(field, message string) *werrors.ValidationError {
	var verr werrors.ValidationError
	verr.Add(field, message)
	return &verr
}
