package bench

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"liquid-ca/internal/sims/liquid"
	"liquid-ca/internal/stats"
)

// Case is one point of a parameter sweep.
type Case struct {
	FlowSpeed   float64
	Compression float64
	Symmetric   bool
}

func (c Case) String() string {
	div := "4/3"
	if c.Symmetric {
		div = "sym"
	}
	return fmt.Sprintf("speed=%.2f comp=%.2f div=%s", c.FlowSpeed, c.Compression, div)
}

// SweepResult is the outcome of one Case.
type SweepResult struct {
	Case      Case
	SettledAt int
	Final     stats.Report
}

// Cases builds the cross product of speeds and compressions, each with
// asymmetric and symmetric lateral divisors.
func Cases(speeds, compressions []float64) []Case {
	out := make([]Case, 0, len(speeds)*len(compressions)*2)
	for _, s := range speeds {
		for _, c := range compressions {
			for _, sym := range []bool{false, true} {
				out = append(out, Case{FlowSpeed: s, Compression: c, Symmetric: sym})
			}
		}
	}
	return out
}

// Sweep runs every case against base on its own world, spread over
// workers goroutines. Each run stops once the world settles or after steps
// ticks. Results are ordered by SettledAt, unsettled runs last, ties broken
// by the smaller absolute drift.
func Sweep(base liquid.Config, cases []Case, steps, workers int, done func()) []SweepResult {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan Case)
	results := make(chan SweepResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- runCase(base, c, steps)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, c := range cases {
			jobs <- c
		}
		close(jobs)
	}()

	all := make([]SweepResult, 0, len(cases))
	for res := range results {
		all = append(all, res)
		if done != nil {
			done()
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	return all
}

func less(a, b SweepResult) bool {
	as, bs := a.SettledAt >= 0, b.SettledAt >= 0
	if as != bs {
		return as
	}
	if as && a.SettledAt != b.SettledAt {
		return a.SettledAt < b.SettledAt
	}
	return math.Abs(a.Final.Drift) < math.Abs(b.Final.Drift)
}

func runCase(base liquid.Config, c Case, steps int) SweepResult {
	world := liquid.NewWithConfig(base)
	// Start from the world's tuning so scenario overrides survive.
	fc := world.FlowConfig()
	fc.FlowSpeed = c.FlowSpeed
	fc.MaxCompression = c.Compression
	if c.Symmetric {
		fc = fc.Symmetric()
	}
	world.SetFlowConfig(fc)
	world.Reset(world.Config().Seed)
	res := Run(world, steps, 0, true, Hooks{})
	return SweepResult{Case: c, SettledAt: res.SettledAt, Final: res.Final}
}
