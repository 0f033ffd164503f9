package termview

import (
	"strings"
	"testing"

	"liquid-ca/internal/flow"
)

func TestFramePlain(t *testing.T) {
	g := flow.NewGrid(5, 2)
	cells := g.Cells()
	cells[g.Index(0, 0)].Type = flow.Solid
	cells[g.Index(1, 0)].Liquid = 0.1
	cells[g.Index(2, 0)].Liquid = 0.6
	cells[g.Index(3, 0)].Liquid = 1.3
	cells[g.Index(4, 1)].Liquid = 0.3
	cells[g.Index(4, 1)].Flow[flow.Down] = true

	out := New(false).Frame(g, false)
	want := "#░▓█ \n    ▒\n"
	if out != want {
		t.Fatalf("frame = %q, want %q", out, want)
	}

	withFlow := New(false).Frame(g, true)
	if !strings.HasSuffix(withFlow, "▼\n") {
		t.Fatalf("flow arrow missing: %q", withFlow)
	}
}

func TestFrameColour(t *testing.T) {
	g := flow.NewGrid(2, 1)
	g.Cells()[0].Liquid = 1
	out := New(true).Frame(g, false)
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI escapes in %q", out)
	}
}

func TestArrow(t *testing.T) {
	c := flow.Cell{}
	if _, ok := Arrow(c); ok {
		t.Fatal("still cell has no arrow")
	}
	c.Flow[flow.Left] = true
	c.Flow[flow.Right] = true
	if _, ok := Arrow(c); ok {
		t.Fatal("even lateral spread has no arrow")
	}
	c.Flow[flow.Up] = true
	if r, _ := Arrow(c); r != '▲' {
		t.Fatalf("got %q, want up arrow", r)
	}
}
