package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"liquid-ca/internal/core"
	"liquid-ca/internal/logger"
	"liquid-ca/internal/server"
	"liquid-ca/internal/sims/liquid"
)

type config struct {
	Addr      string
	LogMode   string
	TPS       int
	Broadcast int
	Scenario  string
	Width     int
	Height    int
	Seed      int64
	Flow      string
}

func main() {
	cfg := loadConfigFromFlags()
	log := logger.New(logger.ParseMode(cfg.LogMode))

	wcfg := liquid.FromMap(core.ParseKV(cfg.Flow))
	wcfg.Width, wcfg.Height, wcfg.Seed = cfg.Width, cfg.Height, cfg.Seed
	wcfg.Scenario = cfg.Scenario
	world, err := liquid.Open(wcfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	driver := server.NewDriver(world, cfg.Seed, cfg.TPS, cfg.Broadcast, log)
	svr := server.NewHTTPServer(cfg.Addr, driver, log)
	log.Info("listening",
		slog.String("addr", svr.Address()),
		slog.Int("w", world.Size().W),
		slog.Int("h", world.Size().H),
		slog.String("scenario", cfg.Scenario),
	)
	if err := server.NewApp(log, driver, svr).Run(); err != nil {
		log.Error("stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func loadConfigFromFlags() *config {
	cfg := new(config)
	def := liquid.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silent")
	flag.IntVar(&cfg.TPS, "tps", 30, "simulation ticks per second")
	flag.IntVar(&cfg.Broadcast, "broadcast", 2, "ticks between websocket snapshots")
	flag.StringVar(&cfg.Scenario, "scenario", "", "built-in scenario name or YAML path")
	flag.IntVar(&cfg.Width, "w", def.Width, "world width (ignored with -scenario)")
	flag.IntVar(&cfg.Height, "h", def.Height, "world height (ignored with -scenario)")
	flag.Int64Var(&cfg.Seed, "seed", def.Seed, "reset seed")
	flag.StringVar(&cfg.Flow, "flow", "", "flow overrides as key=value,key=value")
	flag.Parse()
	return cfg
}
