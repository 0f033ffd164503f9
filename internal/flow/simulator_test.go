package flow

import (
	"math"
	"testing"

	"liquid-ca/internal/core"
)

const eps = 1e-12

func column(values ...float64) *Grid {
	g := NewGrid(1, len(values))
	for y, v := range values {
		g.At(0, y).Liquid = v
	}
	return g
}

func row(values ...float64) *Grid {
	g := NewGrid(len(values), 1)
	for x, v := range values {
		g.At(x, 0).Liquid = v
	}
	return g
}

func initialized(g *Grid, cfg Config) *Simulator {
	s := New(cfg)
	s.Initialize(g)
	return s
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestVerticalFlowValueRegimes(t *testing.T) {
	s := New(DefaultConfig())
	cases := []struct {
		remaining, dest, want float64
	}{
		{1.0, 0.0, 1.0},
		{0.3, 0.2, 1.0},
		{1.0, 1.0, 1.2},
		{2.0, 1.0, 1.625},
		{0.5, 0.5, 1.0},
	}
	for _, tc := range cases {
		got := s.VerticalFlowValue(tc.remaining, tc.dest)
		if !near(got, tc.want, eps) {
			t.Fatalf("VerticalFlowValue(%v, %v) = %v, want %v", tc.remaining, tc.dest, got, tc.want)
		}
	}
}

func TestColumnFallsInOneTick(t *testing.T) {
	g := column(1.0, 0.0)
	s := initialized(g, DefaultConfig())
	s.Simulate(g)

	top, bottom := g.At(0, 0), g.At(0, 1)
	if top.Liquid != 0 {
		t.Fatalf("top should be empty after one tick, got %v", top.Liquid)
	}
	if !near(bottom.Liquid, 1.0, eps) {
		t.Fatalf("bottom should hold all liquid, got %v", bottom.Liquid)
	}
	if !top.Flow[Down] {
		t.Fatal("top cell should record downward flow")
	}
	if top.Settled {
		t.Fatal("an emptied cell must be unsettled")
	}
}

func TestReadsUseTickStartState(t *testing.T) {
	g := column(1.0, 0.0, 0.0)
	s := initialized(g, DefaultConfig())
	s.Simulate(g)

	got := []float64{g.At(0, 0).Liquid, g.At(0, 1).Liquid, g.At(0, 2).Liquid}
	if got[0] != 0 || !near(got[1], 1, eps) || got[2] != 0 {
		t.Fatalf("liquid must move one cell per tick, got %v", got)
	}

	s.Simulate(g)
	got = []float64{g.At(0, 0).Liquid, g.At(0, 1).Liquid, g.At(0, 2).Liquid}
	if got[0] != 0 || got[1] != 0 || !near(got[2], 1, eps) {
		t.Fatalf("second tick should land the liquid at the bottom, got %v", got)
	}
}

func TestLateralDivisorAsymmetry(t *testing.T) {
	cfg := DefaultConfig()

	g := row(1.0, 0.0)
	initialized(g, cfg).Simulate(g)
	rightward := g.At(1, 0).Liquid
	if !near(rightward, 1.0/3, eps) || !near(g.At(0, 0).Liquid, 2.0/3, eps) {
		t.Fatalf("rightward spread = [%v %v], want [2/3 1/3]", g.At(0, 0).Liquid, rightward)
	}

	g = row(0.0, 1.0)
	initialized(g, cfg).Simulate(g)
	leftward := g.At(0, 0).Liquid
	if !near(leftward, 0.25, eps) || !near(g.At(1, 0).Liquid, 0.75, eps) {
		t.Fatalf("leftward spread = [%v %v], want [1/4 3/4]", leftward, g.At(1, 0).Liquid)
	}

	if near(leftward, rightward, 1e-6) {
		t.Fatal("mirrored inputs should spread by different amounts with the default divisors")
	}

	sym := cfg.Symmetric()
	a := row(1.0, 0.0)
	initialized(a, sym).Simulate(a)
	b := row(0.0, 1.0)
	initialized(b, sym).Simulate(b)
	if !near(a.At(1, 0).Liquid, b.At(0, 0).Liquid, eps) {
		t.Fatalf("symmetric divisors should mirror: %v vs %v", a.At(1, 0).Liquid, b.At(0, 0).Liquid)
	}
}

func boxed(w, h int) *Grid {
	g := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				g.At(x, y).Type = Solid
			}
		}
	}
	return g
}

func TestIsolatedCellSettlesAfterThreshold(t *testing.T) {
	g := boxed(3, 3)
	center := g.At(1, 1)
	center.Liquid = 0.5
	s := initialized(g, DefaultConfig())

	for tick := 1; tick <= 9; tick++ {
		s.Simulate(g)
		if center.Settled {
			t.Fatalf("cell settled early at tick %d", tick)
		}
		if center.SettleCount != tick {
			t.Fatalf("settle streak = %d at tick %d", center.SettleCount, tick)
		}
	}
	s.Simulate(g)
	if !center.Settled {
		t.Fatal("cell should settle on the 10th unchanged tick")
	}
	if center.Liquid != 0.5 {
		t.Fatalf("isolated liquid changed: %v", center.Liquid)
	}
	if center.Flowing() {
		t.Fatal("settling clears flow flags")
	}
}

func TestSolidCellsAreCleared(t *testing.T) {
	g := row(0.7, 0.0)
	g.At(0, 0).Type = Solid
	s := initialized(g, DefaultConfig())
	s.Simulate(g)
	if g.At(0, 0).Liquid != 0 {
		t.Fatalf("solid cell kept liquid %v", g.At(0, 0).Liquid)
	}
	if g.At(1, 0).Liquid != 0 {
		t.Fatalf("solid liquid must be discarded, not redistributed; got %v", g.At(1, 0).Liquid)
	}
	if !near(s.LastTick().Discarded, 0.7, eps) {
		t.Fatalf("discarded = %v, want 0.7", s.LastTick().Discarded)
	}
}

func TestSubThresholdLiquidIsDiscarded(t *testing.T) {
	g := row(0.004, 0.0)
	s := initialized(g, DefaultConfig())
	s.Simulate(g)
	if g.At(0, 0).Liquid != 0 || g.At(1, 0).Liquid != 0 {
		t.Fatalf("sub-threshold liquid should vanish, got [%v %v]", g.At(0, 0).Liquid, g.At(1, 0).Liquid)
	}
}

func TestUnsettlePropagation(t *testing.T) {
	// x=0: settled pool beside the source, x=1: source above a settled cell.
	g := NewGrid(3, 2)
	g.At(0, 1).Type = Solid
	g.At(2, 1).Type = Solid
	g.At(0, 0).Liquid = 0.5
	g.At(0, 0).Settled = true
	g.At(1, 0).Liquid = 1.0
	g.At(1, 1).Liquid = 0.2
	g.At(1, 1).Settled = true

	s := initialized(g, DefaultConfig())
	s.Simulate(g)

	if g.At(1, 1).Settled {
		t.Fatal("cell receiving flow must be unsettled in the same tick")
	}
	if g.At(0, 0).Settled {
		t.Fatal("neighbor of a changed cell must be unsettled in the same tick")
	}
	if !g.At(1, 0).Flow[Down] || !g.At(1, 0).Flow[Right] {
		t.Fatalf("source flow flags = %v, want down and right", g.At(1, 0).Flow)
	}
	if g.At(1, 1).Liquid <= 0.2 {
		t.Fatalf("receiving cell should gain liquid, got %v", g.At(1, 1).Liquid)
	}
}

func TestLeveledRowIsIdle(t *testing.T) {
	g := boxed(6, 3)
	for x := 1; x <= 4; x++ {
		g.At(x, 1).Liquid = 1.0
	}
	s := initialized(g, DefaultConfig())
	s.Simulate(g)

	for x := 1; x <= 4; x++ {
		if g.At(x, 1).Liquid != 1.0 {
			t.Fatalf("cell (%d,1) changed to %v", x, g.At(x, 1).Liquid)
		}
	}
	if n := s.LastTick().Transfers; n != 0 {
		t.Fatalf("expected no transfers at equilibrium, got %d", n)
	}
}

func TestCompressedColumnIsIdle(t *testing.T) {
	g := column(0.8, 1.2)
	s := initialized(g, DefaultConfig())
	for i := 0; i < 5; i++ {
		s.Simulate(g)
	}
	if !near(g.At(0, 0).Liquid, 0.8, 1e-9) || !near(g.At(0, 1).Liquid, 1.2, 1e-9) {
		t.Fatalf("compressed column drifted to [%v %v]", g.At(0, 0).Liquid, g.At(0, 1).Liquid)
	}
}

func TestFlowSpeedScaling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlowSpeed = 0.5

	g := row(1.0, 0.0)
	initialized(g, cfg).Simulate(g)
	if !near(g.At(1, 0).Liquid, 1.0/6, eps) {
		t.Fatalf("lateral flow should be scaled, got %v", g.At(1, 0).Liquid)
	}

	// Falling into an empty cell is not scaled.
	g = column(1.0, 0.0)
	initialized(g, cfg).Simulate(g)
	if !near(g.At(0, 1).Liquid, 1.0, eps) {
		t.Fatalf("fall into empty cell should be unscaled, got %v", g.At(0, 1).Liquid)
	}
}

func TestMaxFlowCapsTransfer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFlow = 0.1
	g := column(1.0, 0.0)
	initialized(g, cfg).Simulate(g)
	if !near(g.At(0, 1).Liquid, 0.1, eps) || !near(g.At(0, 0).Liquid, 0.9, eps) {
		t.Fatalf("capped fall = [%v %v], want [0.9 0.1]", g.At(0, 0).Liquid, g.At(0, 1).Liquid)
	}
}

func TestPressurePushesUpward(t *testing.T) {
	// An overfull cell with an empty cell above it pushes liquid up.
	g := column(0.0, 3.0)
	s := initialized(g, DefaultConfig())
	s.Simulate(g)
	if g.At(0, 0).Liquid <= 0 {
		t.Fatal("expected liquid to be pushed into the cell above")
	}
	if !g.At(0, 1).Flow[Up] {
		t.Fatal("expected upward flow flag")
	}
}

func TestConservationAndNonNegativity(t *testing.T) {
	cfg := DefaultConfig()
	g := NewGrid(16, 12)
	rng := core.NewRNG(7)
	for i := range g.Cells() {
		c := &g.Cells()[i]
		switch {
		case rng.Float64() < 0.2:
			c.Type = Solid
		case rng.Bool():
			c.Liquid = cfg.MinValue + rng.Float64()*1.5
		}
	}
	s := initialized(g, cfg)
	bound := 2 * cfg.MinValue * float64(g.Len())

	for tick := 0; tick < 60; tick++ {
		before := TotalLiquid(g)
		s.Simulate(g)
		after := TotalLiquid(g)
		info := s.LastTick()

		if !near(before-after, info.Discarded, 1e-9) {
			t.Fatalf("tick %d: lost %v but only %v was discarded", tick, before-after, info.Discarded)
		}
		if info.Discarded > bound {
			t.Fatalf("tick %d: discarded %v exceeds bound %v", tick, info.Discarded, bound)
		}
		for i, c := range g.Cells() {
			if c.Liquid < 0 {
				t.Fatalf("tick %d: cell %d negative: %v", tick, i, c.Liquid)
			}
			if c.Type == Solid && c.Liquid != 0 {
				t.Fatalf("tick %d: solid cell %d holds %v", tick, i, c.Liquid)
			}
			if c.Liquid != 0 && c.Liquid < cfg.MinValue {
				t.Fatalf("tick %d: cell %d holds sub-threshold %v", tick, i, c.Liquid)
			}
		}
	}
}

func TestSimulateRequiresInitialize(t *testing.T) {
	expectPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic", name)
			}
		}()
		fn()
	}

	expectPanic("uninitialized", func() {
		New(DefaultConfig()).Simulate(NewGrid(2, 2))
	})
	expectPanic("resized", func() {
		s := New(DefaultConfig())
		s.Initialize(NewGrid(3, 3))
		s.Simulate(NewGrid(4, 4))
	})
}
