// Package termview renders liquid grids as terminal text, one rune per cell.
package termview

import (
	"strings"

	"github.com/logrusorgru/aurora"

	"liquid-ca/internal/flow"
)

var shades = []rune{'░', '▒', '▓', '█'}

// View turns grids into printable frames.
type View struct {
	au aurora.Aurora
	// MaxValue is the liquid that renders as a full block.
	MaxValue float64
}

// New returns a View. colour enables ANSI escapes.
func New(colour bool) *View {
	return &View{au: aurora.NewAurora(colour), MaxValue: 1}
}

// Frame renders g row by row. With showFlow, cells that moved liquid last
// tick show an arrow for their main direction instead of a shade.
func (v *View) Frame(g *flow.Grid, showFlow bool) string {
	var b strings.Builder
	b.Grow(g.Len() * 4)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			b.WriteString(v.cell(*g.At(x, y), showFlow))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (v *View) cell(c flow.Cell, showFlow bool) string {
	if c.Type == flow.Solid {
		return v.au.Gray(12, "#").String()
	}
	if c.Liquid <= 0 {
		return " "
	}
	if showFlow {
		if r, ok := Arrow(c); ok {
			return v.au.BrightCyan(string(r)).String()
		}
	}
	r := Shade(c.Liquid, v.MaxValue)
	if c.Liquid > v.MaxValue {
		return v.au.Cyan(string(r)).String()
	}
	return v.au.Blue(string(r)).String()
}

// Shade picks a block glyph for liquid as a fraction of maxValue.
func Shade(liquid, maxValue float64) rune {
	if maxValue <= 0 {
		return shades[len(shades)-1]
	}
	idx := int(liquid / maxValue * float64(len(shades)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(shades) {
		idx = len(shades) - 1
	}
	return shades[idx]
}

// Arrow returns the glyph for the cell's main flow direction. Downward flow
// wins, then a one-sided lateral flow, then upward flow. A cell spreading to
// both sides has no arrow.
func Arrow(c flow.Cell) (rune, bool) {
	switch {
	case c.Flow[flow.Down]:
		return '▼', true
	case c.Flow[flow.Left] && !c.Flow[flow.Right]:
		return '◀', true
	case c.Flow[flow.Right] && !c.Flow[flow.Left]:
		return '▶', true
	case c.Flow[flow.Up]:
		return '▲', true
	}
	return 0, false
}
