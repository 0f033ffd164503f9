package flow

import "testing"

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()
	if c.MaxValue != 1 || c.MinValue != 0.005 || c.MaxCompression != 0.25 {
		t.Fatalf("unexpected level defaults: %+v", c)
	}
	if c.MinFlow != 0.005 || c.MaxFlow != 4 || c.FlowSpeed != 1 || c.SettleThreshold != 10 {
		t.Fatalf("unexpected flow defaults: %+v", c)
	}
	if c.LeftDivisor != 4 || c.RightDivisor != 3 {
		t.Fatalf("lateral divisors = %v/%v, want 4/3", c.LeftDivisor, c.RightDivisor)
	}
}

func TestFromMapOverridesAndIgnoresInvalid(t *testing.T) {
	c := FromMap(DefaultConfig(), map[string]string{
		"flow_speed":       "0.5",
		"max_compression":  "0",
		"settle_threshold": "20",
		"max_flow":         "-1",
		"min_value":        "abc",
	})
	if c.FlowSpeed != 0.5 {
		t.Fatalf("flow_speed = %v", c.FlowSpeed)
	}
	if c.MaxCompression != 0 {
		t.Fatalf("max_compression = %v, zero is allowed", c.MaxCompression)
	}
	if c.SettleThreshold != 20 {
		t.Fatalf("settle_threshold = %d", c.SettleThreshold)
	}
	if c.MaxFlow != 4 || c.MinValue != 0.005 {
		t.Fatalf("invalid values should be ignored: %+v", c)
	}
}

func TestFromMapSymmetric(t *testing.T) {
	c := FromMap(DefaultConfig(), map[string]string{"symmetric": "true"})
	if c.LeftDivisor != c.RightDivisor {
		t.Fatalf("symmetric should equalize divisors, got %v/%v", c.LeftDivisor, c.RightDivisor)
	}
}

func TestToMapRoundTrip(t *testing.T) {
	want := DefaultConfig()
	want.FlowSpeed = 0.75
	want.SettleThreshold = 4
	got := FromMap(DefaultConfig(), want.ToMap())
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestNeighborRespectsBounds(t *testing.T) {
	g := NewGrid(2, 2)
	if Neighbor(g, 0, 0, Up) != -1 || Neighbor(g, 0, 0, Left) != -1 {
		t.Fatal("edge neighbors must be absent")
	}
	if n := Neighbor(g, 0, 0, Down); n != g.Index(0, 1) {
		t.Fatalf("down neighbor index = %d", n)
	}
	if n := Neighbor(g, 0, 0, Right); n != g.Index(1, 0) {
		t.Fatalf("right neighbor index = %d", n)
	}
}

func TestUnsettleAround(t *testing.T) {
	g := NewGrid(3, 3)
	for i := range g.Cells() {
		g.Cells()[i].Settled = true
		g.Cells()[i].SettleCount = 10
	}
	UnsettleAround(g, 1, 1)
	for _, p := range [][2]int{{1, 1}, {1, 0}, {0, 1}, {2, 1}, {1, 2}} {
		c := g.At(p[0], p[1])
		if c.Settled || c.SettleCount != 0 {
			t.Fatalf("cell %v should be awake, got %+v", p, *c)
		}
	}
	if !g.At(0, 0).Settled {
		t.Fatal("diagonal cells are not neighbors")
	}
}
