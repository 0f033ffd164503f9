package liquid

import (
	"fmt"

	"liquid-ca/internal/flow"
)

// StatusLines summarizes the world for the HUD: tick, liquid volume, resting
// cells and the activity of the last step.
func (w *World) StatusLines() []string {
	wet, settled := 0, 0
	for _, c := range w.grid.Cells() {
		if c.Type == flow.Solid || c.Liquid <= 0 {
			continue
		}
		wet++
		if c.Settled {
			settled++
		}
	}
	last := w.sim.LastTick()
	return []string{
		fmt.Sprintf("Tick %d  seed %d", w.tick, w.seed),
		fmt.Sprintf("Liquid %.2f", flow.TotalLiquid(w.grid)),
		fmt.Sprintf("Settled %d/%d", settled, wet),
		fmt.Sprintf("Active %d  moved %.3f", last.Active, last.Moved),
	}
}
