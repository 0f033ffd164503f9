package liquid

import "liquid-ca/internal/flow"

// AddLiquid pours amount into the open cell at (x, y). It reports false for
// solid or out-of-range cells.
func (w *World) AddLiquid(x, y int, amount float64) bool {
	cell := w.grid.At(x, y)
	if cell == nil || cell.Type == flow.Solid || amount <= 0 {
		return false
	}
	cell.Liquid += amount
	w.touch(x, y)
	return true
}

// RemoveLiquid drains the cell at (x, y).
func (w *World) RemoveLiquid(x, y int) bool {
	cell := w.grid.At(x, y)
	if cell == nil || cell.Type == flow.Solid {
		return false
	}
	cell.Liquid = 0
	w.touch(x, y)
	return true
}

// SetSolid turns the cell at (x, y) into wall or back into open space. Any
// liquid in a cell that becomes solid is removed.
func (w *World) SetSolid(x, y int, solid bool) bool {
	cell := w.grid.At(x, y)
	if cell == nil {
		return false
	}
	if solid {
		cell.Type = flow.Solid
		cell.Liquid = 0
	} else {
		cell.Type = flow.Open
	}
	cell.ResetFlow()
	w.touch(x, y)
	return true
}

// ToggleSolid flips the cell at (x, y) between wall and open space.
func (w *World) ToggleSolid(x, y int) bool {
	cell := w.grid.At(x, y)
	if cell == nil {
		return false
	}
	return w.SetSolid(x, y, cell.Type != flow.Solid)
}

func (w *World) touch(x, y int) {
	flow.UnsettleAround(w.grid, x, y)
	w.display[w.grid.Index(x, y)] = DisplayValue(*w.grid.At(x, y), w.sim.Config().MaxValue)
}

// wake unsettles every cell so new tuning reaches cells that were at rest.
func (w *World) wake() {
	cells := w.grid.Cells()
	for i := range cells {
		cells[i].Unsettle()
	}
}
