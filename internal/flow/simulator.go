// Package flow implements the per-tick liquid redistribution rule for a grid
// of open and solid cells.
//
// Every tick is split into a compute pass and a commit pass. The compute pass
// reads cell liquid as it was at the start of the tick and accumulates all
// transfers into a delta buffer; the commit pass applies the buffer. Flow
// decisions are therefore independent of the scan order.
package flow

import (
	"fmt"
	"math"
)

// TickInfo summarizes the most recent Simulate call.
type TickInfo struct {
	// Active counts cells that ran flow resolution.
	Active int
	// Transfers counts individual cell-to-neighbor transfers.
	Transfers int
	// Moved is the total liquid transferred between cells.
	Moved float64
	// Discarded is the liquid removed by sub-threshold snapping and by
	// clearing solid cells.
	Discarded float64
}

// Simulator advances a Grid one tick at a time. It is not safe for
// concurrent use.
type Simulator struct {
	cfg   Config
	diffs []float64
	w, h  int
	last  TickInfo
}

// New returns a Simulator using cfg. Initialize must be called before the
// first Simulate.
func New(cfg Config) *Simulator {
	return &Simulator{cfg: cfg}
}

// Config returns the active tuning.
func (s *Simulator) Config() Config { return s.cfg }

// SetConfig replaces the tuning. It takes effect on the next tick.
func (s *Simulator) SetConfig(cfg Config) { s.cfg = cfg }

// LastTick reports counters for the most recent tick.
func (s *Simulator) LastTick() TickInfo { return s.last }

// Initialize sizes the delta buffer for g. Call it again whenever the grid
// is reallocated or resized.
func (s *Simulator) Initialize(g *Grid) {
	s.w, s.h = g.W, g.H
	s.diffs = make([]float64, g.Len())
}

// VerticalFlowValue returns the liquid the lower of two stacked cells should
// hold, given the liquid remaining in the upper cell and the liquid in the
// lower one. Below one full cell of combined liquid it returns MaxValue;
// callers subtract the destination's current liquid, which keeps the net
// transfer correct.
func (s *Simulator) VerticalFlowValue(remaining, destination float64) float64 {
	maxV, comp := s.cfg.MaxValue, s.cfg.MaxCompression
	sum := remaining + destination
	switch {
	case sum <= maxV:
		return maxV
	case sum < 2*maxV+comp:
		return (maxV*maxV + sum*comp) / (maxV + comp)
	default:
		return (sum + comp) / 2
	}
}

// Simulate advances g by one tick.
//
// It panics if the delta buffer was not sized for g by Initialize.
func (s *Simulator) Simulate(g *Grid) {
	if s.diffs == nil || s.w != g.W || s.h != g.H || len(s.diffs) != g.Len() {
		panic(fmt.Sprintf("flow: Simulate on %dx%d grid with buffer sized for %dx%d; call Initialize after allocating or resizing the grid",
			g.W, g.H, s.w, s.h))
	}
	s.last = TickInfo{}
	for i := range s.diffs {
		s.diffs[i] = 0
	}

	cells := g.Cells()
	for x := 0; x < g.W; x++ {
		for y := 0; y < g.H; y++ {
			s.resolve(g, cells, x, y)
		}
	}

	minV := s.cfg.MinValue
	for i := range cells {
		c := &cells[i]
		c.Liquid += s.diffs[i]
		if c.Liquid < minV {
			s.last.Discarded += c.Liquid
			c.Liquid = 0
			c.Unsettle()
		}
	}
}

// resolve computes the outflow of the cell at (x, y) into the delta buffer.
func (s *Simulator) resolve(g *Grid, cells []Cell, x, y int) {
	idx := g.Index(x, y)
	cell := &cells[idx]
	cell.ResetFlow()

	switch {
	case cell.Type == Solid:
		s.last.Discarded += cell.Liquid
		cell.Liquid = 0
		return
	case cell.Liquid == 0, cell.Settled:
		return
	case cell.Liquid < s.cfg.MinValue:
		s.last.Discarded += cell.Liquid
		cell.Liquid = 0
		return
	}
	s.last.Active++

	start := cell.Liquid
	remaining := start
	for _, d := range Directions {
		n := Neighbor(g, x, y, d)
		if n >= 0 && cells[n].Type == Open {
			amount := s.outflow(d, remaining, cells[n].Liquid)
			if amount != 0 {
				remaining -= amount
				s.diffs[idx] -= amount
				s.diffs[n] += amount
				cell.Flow[d] = true
				cells[n].Unsettle()
				s.last.Transfers++
				s.last.Moved += amount
			}
		}
		if remaining < s.cfg.MinValue {
			s.diffs[idx] -= remaining
			s.last.Discarded += remaining
			return
		}
	}

	if start == remaining {
		cell.SettleCount++
		if cell.SettleCount >= s.cfg.SettleThreshold {
			cell.ResetFlow()
			cell.Settled = true
		}
		return
	}
	for _, d := range Directions {
		if n := Neighbor(g, x, y, d); n >= 0 {
			cells[n].Unsettle()
		}
	}
}

// outflow returns how much liquid moves from a cell holding remaining into a
// neighbor holding neighbor in direction d, clamped to [0, min(MaxFlow, remaining)].
func (s *Simulator) outflow(d Direction, remaining, neighbor float64) float64 {
	var amount float64
	switch d {
	case Down:
		amount = s.VerticalFlowValue(remaining, neighbor) - neighbor
		if neighbor > 0 && amount > s.cfg.MinFlow {
			amount *= s.cfg.FlowSpeed
		}
	case Left:
		amount = (remaining - neighbor) / s.cfg.LeftDivisor
		if amount > s.cfg.MinFlow {
			amount *= s.cfg.FlowSpeed
		}
	case Right:
		amount = (remaining - neighbor) / s.cfg.RightDivisor
		if amount > s.cfg.MinFlow {
			amount *= s.cfg.FlowSpeed
		}
	case Up:
		amount = remaining - s.VerticalFlowValue(remaining, neighbor)
		if amount > s.cfg.MinFlow {
			amount *= s.cfg.FlowSpeed
		}
	}

	// Negative and NaN amounts both collapse to zero here.
	if !(amount > 0) {
		return 0
	}
	return math.Min(amount, math.Min(s.cfg.MaxFlow, remaining))
}
