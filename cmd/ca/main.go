//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"liquid-ca/internal/app"
	"liquid-ca/internal/core"
	"liquid-ca/internal/scenario"
	_ "liquid-ca/internal/sims/liquid"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q (have %v)", cfg.Sim, core.Names())
	}
	if cfg.Scenario != "" {
		if _, err := scenario.Load(cfg.Scenario); err != nil {
			log.Fatalf("scenario: %v", err)
		}
	}

	sim := factory(cfg.SimConfig())
	sim.Reset(cfg.Seed)

	game := app.New(sim, cfg.Scale, cfg.TPS, cfg.Seed)
	size := sim.Size()

	ebiten.SetWindowTitle("liquid-ca: " + sim.Name())
	// Input is polled at 60Hz; the game paces simulation ticks itself.
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(size.W*cfg.Scale+app.PanelWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
