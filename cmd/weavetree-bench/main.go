// Package main provides the weavetree-bench CLI: run N independent
// searches against the same compiled MDP, each with its own seed,
// across a worker pool. Every worker owns one Simulator and one
// search.Tree exclusively end to end — this parallelizes independent
// runs, not a single tree.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/signalnine/weavetree-go/mdp"
	"github.com/signalnine/weavetree-go/search"
	"github.com/signalnine/weavetree-go/simulate"
)

var (
	mdpPath          string
	numRuns          int
	workers          int
	iterations       uint
	explorationConst float64
	gamma            float64
	maxSteps         uint
	returnType       string
	seed             int64
)

func init() {
	flag.StringVar(&mdpPath, "mdp", "", "Path to a declarative MDP YAML document (required)")
	flag.IntVar(&numRuns, "runs", 100, "Number of independent searches to run")
	flag.IntVar(&workers, "workers", 0, "Number of worker goroutines (0 = auto-detect CPU count)")
	flag.UintVar(&iterations, "iterations", 1000, "MCTS iterations per run")
	flag.Float64Var(&explorationConst, "c", 1.414, "UCB1 exploration constant")
	flag.Float64Var(&gamma, "gamma", 1.0, "Discount factor in [0, 1]")
	flag.UintVar(&maxSteps, "max-steps", 100, "Max combined selection+rollout steps per iteration")
	flag.StringVar(&returnType, "return-type", search.ReturnDiscounted, "\"discounted\" or \"undiscounted\"")
	flag.Int64Var(&seed, "seed", 0, "Seed for deriving each run's own seed (0 = current time)")
}

// job is one independent (compiled MDP, seed) search to run.
type job struct {
	runIndex int
	seed     uint64
}

// outcome is one completed run's summary, collected for aggregation.
type outcome struct {
	action              search.ActionKey
	iterationsCompleted uint32
	err                 error
}

func main() {
	flag.Parse()

	if mdpPath == "" {
		fail(fmt.Errorf("-mdp is required"))
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
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
	if err := config.Validate(); err != nil {
		fail(err)
	}

	jobs := make(chan job, numRuns)
	results := make(chan outcome, numRuns)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker(&wg, jobs, results, compiled, config)
	}

	seedGen := rand.New(rand.NewSource(seed))
	for i := 0; i < numRuns; i++ {
		jobs <- job{runIndex: i, seed: seedGen.Uint64()}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	stats := aggregate(results, numRuns)

	log.Info().
		Str("compile_id", compiled.CompileID.String()).
		Int("runs", stats.completed).
		Int("failed", stats.failed).
		Msg("bench complete")

	fmt.Printf(
		"runs=%d failed=%d agreement_rate=%.4f mean_iterations=%.1f\n",
		stats.completed, stats.failed, stats.agreementRate(), stats.meanIterations(),
	)
}

func worker(wg *sync.WaitGroup, jobs <-chan job, results chan<- outcome, compiled *mdp.CompiledMdp, config search.Config) {
	defer wg.Done()

	for j := range jobs {
		action, iterationsCompleted, err := runOne(compiled, config, j.seed)
		results <- outcome{action: action, iterationsCompleted: iterationsCompleted, err: err}
	}
}

func runOne(compiled *mdp.CompiledMdp, config search.Config, seed uint64) (search.ActionKey, uint32, error) {
	sim := simulate.NewMdpSimulator(compiled, seed)

	rootTerminal, err := sim.IsTerminalByKey(sim.StartStateKey())
	if err != nil {
		return 0, 0, err
	}

	tree := search.NewTree(sim.StartStateKey(), rootTerminal)
	result, err := tree.Run(sim, config)
	if err != nil {
		return 0, result.IterationsCompleted, err
	}

	action, err := tree.BestRootActionByValue()
	if err != nil {
		return 0, result.IterationsCompleted, err
	}
	return action, result.IterationsCompleted, nil
}

// aggregatedStats is the MDP-domain analogue of the teacher's
// AggregatedStats: instead of win/loss rates across card games, it
// reports how often independent searches over the same MDP agree on
// a recommendation.
type aggregatedStats struct {
	completed       int
	failed          int
	actionCounts    map[search.ActionKey]int
	totalIterations uint64
}

func (s aggregatedStats) agreementRate() float64 {
	if s.completed == 0 {
		return 0
	}
	max := 0
	for _, count := range s.actionCounts {
		if count > max {
			max = count
		}
	}
	return float64(max) / float64(s.completed)
}

func (s aggregatedStats) meanIterations() float64 {
	if s.completed == 0 {
		return 0
	}
	return float64(s.totalIterations) / float64(s.completed)
}

func aggregate(results <-chan outcome, numRuns int) aggregatedStats {
	stats := aggregatedStats{actionCounts: make(map[search.ActionKey]int)}

	for r := range results {
		if r.err != nil {
			stats.failed++
			continue
		}
		stats.completed++
		stats.actionCounts[r.action]++
		stats.totalIterations += uint64(r.iterationsCompleted)
	}

	return stats
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "weavetree-bench:", err)
	os.Exit(1)
}
