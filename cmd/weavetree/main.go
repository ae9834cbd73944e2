// Package main provides the weavetree CLI: compile a declarative MDP
// document and run one MCTS search against it.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/signalnine/weavetree-go/mdp"
	"github.com/signalnine/weavetree-go/search"
	"github.com/signalnine/weavetree-go/simulate"
)

// CLI flags.
var (
	mdpPath           string
	iterations        uint
	explorationConst  float64
	gamma             float64
	maxSteps          uint
	returnType        string
	fixedHorizonSteps int
	rolloutAction     int
	seed              int64
	verbose           bool
)

func init() {
	flag.StringVar(&mdpPath, "mdp", "", "Path to a declarative MDP YAML document (required)")
	flag.UintVar(&iterations, "iterations", 1000, "MCTS iterations per run")
	flag.Float64Var(&explorationConst, "c", 1.414, "UCB1 exploration constant")
	flag.Float64Var(&gamma, "gamma", 1.0, "Discount factor in [0, 1]")
	flag.UintVar(&maxSteps, "max-steps", 100, "Max combined selection+rollout steps per iteration")
	flag.StringVar(&returnType, "return-type", search.ReturnDiscounted, "\"discounted\" or \"undiscounted\"")
	flag.IntVar(&fixedHorizonSteps, "fixed-horizon-steps", -1, "Cut every iteration at exactly this many steps from root (-1 = unset)")
	flag.IntVar(&rolloutAction, "rollout-action", -1, "Fixed rollout action index (-1 = uniform random)")
	flag.Int64Var(&seed, "seed", 0, "RNG seed (0 = current time)")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug-level logging")
}

func main() {
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if mdpPath == "" {
		fail(fmt.Errorf("-mdp is required"))
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	text, err := os.ReadFile(mdpPath)
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", mdpPath, err))
	}

	compiled, err := mdp.CompileYAMLString(string(text))
	if err != nil {
		fail(err)
	}

	config := search.Config{
		Iterations: uint32(iterations),
		C:          explorationConst,
		Gamma:      gamma,
		MaxSteps:   uint32(maxSteps),
		ReturnType: returnType,
	}
	if fixedHorizonSteps >= 0 {
		h := uint32(fixedHorizonSteps)
		config.FixedHorizonSteps = &h
	}
	if err := config.Validate(); err != nil {
		fail(err)
	}

	sim := simulate.NewMdpSimulator(compiled, uint64(seed))

	rootTerminal, err := sim.IsTerminalByKey(sim.StartStateKey())
	if err != nil {
		fail(err)
	}
	tree := search.NewTree(sim.StartStateKey(), rootTerminal)

	var opts []search.RunOption
	if rolloutAction >= 0 {
		opts = append(opts, search.WithRolloutAction(rolloutAction))
	}

	result, err := tree.Run(sim, config, opts...)
	if err != nil {
		fail(err)
	}

	action, err := tree.BestRootActionByValue()
	if err != nil {
		fail(err)
	}

	log.Info().
		Str("compile_id", compiled.CompileID.String()).
		Str("run_id", result.RunID.String()).
		Uint32("iterations_completed", result.IterationsCompleted).
		Int("recommended_action", action).
		Msg("search complete")

	fmt.Printf("recommended_action=%d iterations_completed=%d\n", action, result.IterationsCompleted)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "weavetree:", err)
	os.Exit(1)
}
