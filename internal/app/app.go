//go:build ebiten

package app

import (
	"image/color"
	"time"

	"liquid-ca/internal/core"
	"liquid-ca/internal/render"
	"liquid-ca/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PanelWidth is the width of the HUD column right of the grid.
const PanelWidth = 260

// pourAmount is the liquid added per cell per frame while the left button
// is held.
const pourAmount = 0.5

type paletteProvider interface {
	Palette() []color.RGBA
}

type liquidPainter interface {
	AddLiquid(x, y int, amount float64) bool
	RemoveLiquid(x, y int) bool
	ToggleSolid(x, y int) bool
}

var greyscale = []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	clock   *core.FixedStep

	palette []color.RGBA

	scale    int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, scale, tps int, seed int64) *Game {
	gp := render.NewGridPainter(sim.Size().W, sim.Size().H)
	palette := greyscale
	if p, ok := sim.(paletteProvider); ok {
		palette = p.Palette()
	}
	return &Game{
		sim:     sim,
		painter: gp,
		overlay: ui.NewOverlay(sim, scale),
		hud:     ui.NewHUD(sim, PanelWidth),
		clock:   core.NewFixedStep(tps),
		palette: palette,
		scale:   scale,
		seed:    seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.clock.SetTPS(g.clock.TPS() * 2)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) && g.clock.TPS() > 1 {
		g.clock.SetTPS(g.clock.TPS() / 2)
	}

	g.overlay.Update()
	g.hud.Update(g.gridWidth())
	g.paint()

	if (!g.paused && g.clock.ShouldStep()) || g.tickOnce {
		g.sim.Step()
		g.tickOnce = false
	}
	return nil
}

// paint applies mouse edits: left pours, right toggles walls on press and
// middle drains.
func (g *Game) paint() {
	p, ok := g.sim.(liquidPainter)
	if !ok {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx >= g.gridWidth() {
		return
	}
	x, y := mx/g.scale, my/g.scale
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		p.AddLiquid(x, y, pourAmount)
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		p.ToggleSolid(x, y)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		p.RemoveLiquid(x, y)
	}
}

func (g *Game) gridWidth() int { return g.sim.Size().W * g.scale }

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.gridWidth(), g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + PanelWidth, s.H * g.scale
}
