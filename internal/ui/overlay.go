//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"liquid-ca/internal/core"
	"liquid-ca/internal/flow"
	"liquid-ca/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type gridProvider interface {
	Grid() *flow.Grid
	FlowConfig() flow.Config
}

var (
	settledTint    = color.RGBA{R: 90, G: 220, B: 120}
	compressedTint = color.RGBA{R: 255, G: 120, B: 40}
)

// Overlay draws optional debugging visuals on top of the base simulation.
type Overlay struct {
	sim            core.Sim
	scale          int
	showFlow       bool
	showSettled    bool
	showCompressed bool

	masks   *render.GridPainter
	maskBuf []float32
	pixel   *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update allows the overlay to update internal state.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showFlow = !o.showFlow
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showSettled = !o.showSettled
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showCompressed = !o.showCompressed
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	provider, ok := o.sim.(gridProvider)
	if !ok {
		return
	}
	g := provider.Grid()
	if g.Len() == 0 {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	if o.showSettled || o.showCompressed {
		if o.masks == nil {
			o.masks = render.NewGridPainter(g.W, g.H)
			o.maskBuf = make([]float32, g.Len())
		}
		if o.showSettled {
			settledMask(g, o.maskBuf)
			o.masks.BlitMask(screen, o.maskBuf, settledTint, scale)
		}
		if o.showCompressed {
			compressedMask(g, provider.FlowConfig(), o.maskBuf)
			o.masks.BlitMask(screen, o.maskBuf, compressedTint, scale)
		}
	}
	if o.showFlow {
		o.drawFlow(screen, g, provider.FlowConfig().MaxValue, scale)
	}
}

func settledMask(g *flow.Grid, out []float32) {
	for i, c := range g.Cells() {
		out[i] = 0
		if c.Settled && c.Liquid > 0 {
			out[i] = 1
		}
	}
}

// compressedMask marks cells holding more than MaxValue, scaled by how much
// of the allowed compression they use.
func compressedMask(g *flow.Grid, cfg flow.Config, out []float32) {
	span := cfg.MaxCompression
	if span <= 0 {
		span = 1
	}
	for i, c := range g.Cells() {
		out[i] = 0
		if over := c.Liquid - cfg.MaxValue; over > 0 {
			out[i] = float32(clamp01(0.25 + over/span))
		}
	}
}

// drawFlow draws one arrow per sampled cell for each direction it moved
// liquid last tick. Small scales sample every few cells to keep arrows
// legible.
func (o *Overlay) drawFlow(screen *ebiten.Image, g *flow.Grid, maxValue float64, scale int) {
	stride := 1
	if scale < 6 {
		stride = int(math.Ceil(6 / float64(scale)))
	}
	span := float64(scale * stride)
	cells := g.Cells()
	for y := 0; y < g.H; y += stride {
		for x := 0; x < g.W; x += stride {
			c := cells[g.Index(x, y)]
			if c.Type == flow.Solid || !c.Flowing() {
				continue
			}
			level := 1.0
			if maxValue > 0 {
				level = clamp01(c.Liquid / maxValue)
			}
			cx := (float64(x) + 0.5) * float64(scale)
			cy := (float64(y) + 0.5) * float64(scale)
			for _, d := range flow.Directions {
				if !c.Flow[d] {
					continue
				}
				dx, dy := d.Offset()
				o.drawArrow(screen, cx, cy, float64(dx), float64(dy), span, level, scale)
			}
		}
	}
}

func (o *Overlay) drawArrow(screen *ebiten.Image, cx, cy, nx, ny, span, level float64, scale int) {
	const headAngle = math.Pi / 6

	length := span * (0.35 + 0.35*math.Sqrt(level))
	headLength := math.Min(length*0.3, float64(scale)*4.5)
	tailLength := length * 0.4
	tipX := cx + nx*(length-tailLength)
	tipY := cy + ny*(length-tailLength)
	tailX := cx - nx*tailLength
	tailY := cy - ny*tailLength
	bodyEndX := tipX - nx*headLength
	bodyEndY := tipY - ny*headLength

	thickness := math.Max(float64(scale)*(0.25+0.2*level), 1)
	col := interpolateColor(level)
	o.drawLine(screen, tailX, tailY, bodyEndX, bodyEndY, thickness, col)

	angle := math.Atan2(ny, nx)
	leftX := tipX - math.Cos(angle+headAngle)*headLength
	leftY := tipY - math.Sin(angle+headAngle)*headLength
	rightX := tipX - math.Cos(angle-headAngle)*headLength
	rightY := tipY - math.Sin(angle-headAngle)*headLength
	o.drawLine(screen, tipX, tipY, leftX, leftY, thickness*0.85, col)
	o.drawLine(screen, tipX, tipY, rightX, rightY, thickness*0.85, col)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}

func interpolateColor(t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: uint8(math.Round(230 + 25*t)),
		G: uint8(math.Round(230 - 40*t)),
		B: uint8(math.Round(120 - 80*t)),
		A: uint8(math.Round(150 + 90*t)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
