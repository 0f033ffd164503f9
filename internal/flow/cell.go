package flow

import "liquid-ca/internal/core"

// CellType classifies a cell as open space or solid wall.
type CellType uint8

const (
	// Open cells can hold and exchange liquid.
	Open CellType = iota
	// Solid cells never hold or receive liquid.
	Solid
)

// String returns a short name for the type.
func (t CellType) String() string {
	if t == Solid {
		return "solid"
	}
	return "open"
}

// Direction names one of the four axis neighbors. The declaration order is
// the order in which flow is resolved.
type Direction uint8

const (
	Down Direction = iota
	Left
	Right
	Up
)

// Directions lists every direction in resolution order.
var Directions = [4]Direction{Down, Left, Right, Up}

// Offset returns the coordinate delta for d. y grows downwards.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, -1
	}
}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "up"
	}
}

// Cell is one unit of the liquid grid.
type Cell struct {
	Liquid      float64
	Type        CellType
	Settled     bool
	SettleCount int

	// Flow records which directions this cell sent liquid in the last tick.
	Flow [4]bool
}

// Unsettle wakes the cell and restarts its settle streak.
func (c *Cell) Unsettle() {
	c.Settled = false
	c.SettleCount = 0
}

// ResetFlow clears the flow direction flags.
func (c *Cell) ResetFlow() {
	c.Flow = [4]bool{}
}

// Flowing reports whether the cell sent liquid in any direction last tick.
func (c *Cell) Flowing() bool {
	return c.Flow[Down] || c.Flow[Left] || c.Flow[Right] || c.Flow[Up]
}

// Grid is the row-major cell container the simulator operates on.
type Grid = core.Grid[Cell]

// NewGrid allocates an all-open, dry grid.
func NewGrid(w, h int) *Grid {
	return core.NewGrid[Cell](w, h)
}

// Neighbor returns the index of the cell next to (x, y) in direction d, or
// -1 when that position lies outside the world.
func Neighbor(g *Grid, x, y int, d Direction) int {
	dx, dy := d.Offset()
	nx, ny := x+dx, y+dy
	if !g.InBounds(nx, ny) {
		return -1
	}
	return g.Index(nx, ny)
}

// UnsettleAround wakes the cell at (x, y) and its four direct neighbors.
func UnsettleAround(g *Grid, x, y int) {
	cell := g.At(x, y)
	if cell == nil {
		return
	}
	cell.Unsettle()
	cells := g.Cells()
	for _, d := range Directions {
		if n := Neighbor(g, x, y, d); n >= 0 {
			cells[n].Unsettle()
		}
	}
}

// TotalLiquid sums the liquid held by every cell.
func TotalLiquid(g *Grid) float64 {
	total := 0.0
	for _, c := range g.Cells() {
		total += c.Liquid
	}
	return total
}
