package liquid

import (
	"image/color"
	"math"

	"github.com/mazznoer/colorgrad"

	"liquid-ca/internal/flow"
)

const (
	// Levels is the number of display bands for liquid depth.
	Levels = 16
	// SolidValue is the display value of a solid cell.
	SolidValue = Levels + 1
)

var liquidPalette = buildLiquidPalette()

// Palette exposes the color palette used for rendering the liquid world.
// Index 0 is dry open space, 1..Levels are liquid bands and SolidValue is
// wall.
func (w *World) Palette() []color.RGBA {
	return liquidPalette
}

func buildLiquidPalette() []color.RGBA {
	palette := make([]color.RGBA, SolidValue+1)
	palette[0] = color.RGBA{R: 12, G: 14, B: 20, A: 255}
	grad := colorgrad.Blues()
	for i, c := range grad.Colors(Levels + 4) {
		// Skip the washed-out start of the ramp.
		if i < 4 {
			continue
		}
		palette[i-3] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	palette[SolidValue] = color.RGBA{R: 120, G: 112, B: 104, A: 255}
	return palette
}

// DisplayValue maps a cell to its display band. Liquid above maxValue
// saturates to the top band.
func DisplayValue(c flow.Cell, maxValue float64) uint8 {
	if c.Type == flow.Solid {
		return SolidValue
	}
	if c.Liquid <= 0 || maxValue <= 0 {
		return 0
	}
	band := int(math.Ceil(c.Liquid / maxValue * Levels))
	if band < 1 {
		band = 1
	}
	if band > Levels {
		band = Levels
	}
	return uint8(band)
}

func (w *World) rebuildDisplay() {
	maxV := w.sim.Config().MaxValue
	for i, c := range w.grid.Cells() {
		w.display[i] = DisplayValue(c, maxV)
	}
}
