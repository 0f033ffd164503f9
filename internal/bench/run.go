// Package bench drives liquid worlds headlessly for measurement runs and
// parameter sweeps.
package bench

import (
	"time"

	"liquid-ca/internal/flow"
	"liquid-ca/internal/sims/liquid"
	"liquid-ca/internal/stats"
)

// RunResult summarizes one headless run.
type RunResult struct {
	Reference float64
	Final     stats.Report
	// SettledAt is the first tick at which every wet cell was settled, or -1.
	SettledAt int
	Samples   []stats.Report
	Elapsed   time.Duration
}

// Hooks observe a run. Any field may be nil.
type Hooks struct {
	// Tick is called after every step.
	Tick func()
	// Sample is called every `every` ticks with the fresh report.
	Sample func(w *liquid.World, r stats.Report)
}

// Run steps w up to steps times. With stopWhenSettled the run ends at the
// first tick where the whole world is at rest. A report is sampled every
// `every` ticks when every > 0.
func Run(w *liquid.World, steps, every int, stopWhenSettled bool, hooks Hooks) RunResult {
	start := time.Now()
	maxV := w.FlowConfig().MaxValue
	res := RunResult{Reference: flow.TotalLiquid(w.Grid()), SettledAt: -1}
	for i := 0; i < steps; i++ {
		w.Step()
		if hooks.Tick != nil {
			hooks.Tick()
		}
		tick := w.Tick()
		sample := every > 0 && tick%every == 0
		if res.SettledAt < 0 || sample {
			r := stats.Measure(w.Grid(), tick, res.Reference, maxV)
			if res.SettledAt < 0 && r.WetCells > 0 && r.Settled() {
				res.SettledAt = tick
			}
			if sample {
				res.Samples = append(res.Samples, r)
				if hooks.Sample != nil {
					hooks.Sample(w, r)
				}
			}
			if stopWhenSettled && res.SettledAt >= 0 {
				break
			}
		}
	}
	res.Final = stats.Measure(w.Grid(), w.Tick(), res.Reference, maxV)
	res.Elapsed = time.Since(start)
	return res
}
