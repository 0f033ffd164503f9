// Package liquid wraps the flow simulator as a registered cellular automaton
// with procedural or scenario-driven layouts and interactive painting.
package liquid

import (
	"liquid-ca/internal/core"
	"liquid-ca/internal/flow"
	"liquid-ca/internal/scenario"
)

// World owns a liquid grid and the simulator that advances it.
type World struct {
	cfg Config

	w, h int

	grid    *flow.Grid
	sim     *flow.Simulator
	layout  *scenario.Scenario
	display []uint8
	tick    int
	seed    int64

	rng *core.RNG
}

// New returns a liquid world with the provided dimensions using defaults.
func New(w, h int) *World {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a liquid world configured from the provided options.
// A scenario that fails to load is dropped in favour of procedural
// generation; use Open to observe the error.
func NewWithConfig(cfg Config) *World {
	w, err := Open(cfg)
	if err != nil {
		cfg.Scenario = ""
		w, _ = Open(cfg)
	}
	return w
}

// Open is NewWithConfig that reports scenario loading errors.
func Open(cfg Config) (*World, error) {
	var layout *scenario.Scenario
	if cfg.Scenario != "" {
		s, err := scenario.Load(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		layout = s
		cfg.Width = s.Width()
		cfg.Height = s.Height()
		cfg.Flow = s.FlowConfig(cfg.Flow)
		if s.Seed != 0 {
			cfg.Seed = s.Seed
		}
	}
	grid := flow.NewGrid(cfg.Width, cfg.Height)
	w := &World{
		cfg:     cfg,
		w:       grid.W,
		h:       grid.H,
		grid:    grid,
		sim:     flow.New(cfg.Flow),
		layout:  layout,
		display: make([]uint8, grid.Len()),
		seed:    cfg.Seed,
		rng:     core.NewRNG(cfg.Seed),
	}
	w.sim.Initialize(grid)
	return w, nil
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "liquid" }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.w, H: w.h} }

// Cells exposes the current display buffer.
func (w *World) Cells() []uint8 { return w.display }

// Grid exposes the live cell grid.
func (w *World) Grid() *flow.Grid { return w.grid }

// Tick returns the number of steps since the last reset.
func (w *World) Tick() int { return w.tick }

// Seed returns the seed used by the last reset.
func (w *World) Seed() int64 { return w.seed }

// Config returns the world configuration, including the active flow tuning.
func (w *World) Config() Config { return w.cfg }

// FlowConfig returns the active flow tuning.
func (w *World) FlowConfig() flow.Config { return w.sim.Config() }

// LastTick reports the simulator counters for the most recent step.
func (w *World) LastTick() flow.TickInfo { return w.sim.LastTick() }

// Reset rebuilds the initial layout. A zero seed selects the configured one.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.seed = effective
	w.rng = core.NewRNG(effective)
	w.tick = 0

	if w.layout != nil {
		// Dimensions were taken from the layout in Open.
		_ = w.layout.Apply(w.grid, w.sim.Config())
	} else {
		w.generate()
	}
	w.sim.Initialize(w.grid)
	w.rebuildDisplay()
}

// Step advances the world by one simulator tick.
func (w *World) Step() {
	w.sim.Simulate(w.grid)
	w.tick++
	w.rebuildDisplay()
}

// generate lays out a bordered tank with random ledges and a liquid block
// across the top Fill fraction of rows.
func (w *World) generate() {
	w.grid.Fill(flow.Cell{})
	cells := w.grid.Cells()
	maxV := w.sim.Config().MaxValue

	for y := 0; y < w.h; y++ {
		for x := 0; x < w.w; x++ {
			if x == 0 || x == w.w-1 || y == w.h-1 {
				cells[w.grid.Index(x, y)].Type = flow.Solid
			}
		}
	}

	fillRows := int(float64(w.h) * w.cfg.Fill)
	for y := 0; y < fillRows && y < w.h-1; y++ {
		for x := 1; x < w.w-1; x++ {
			cells[w.grid.Index(x, y)].Liquid = maxV
		}
	}

	interior := w.w - 2
	if interior < 3 {
		return
	}
	for y := fillRows + 2; y < w.h-2; y += 2 {
		if w.rng.Float64() >= w.cfg.SolidChance {
			continue
		}
		length := 2 + w.rng.IntN(interior/3+1)
		start := 1 + w.rng.IntN(interior-length+1)
		for x := start; x < start+length && x < w.w-1; x++ {
			cells[w.grid.Index(x, y)].Type = flow.Solid
		}
	}
}

func init() {
	core.Register("liquid", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
