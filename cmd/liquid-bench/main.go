package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/cheggaaa/pb/v3"
	"github.com/integrii/flaggy"

	"liquid-ca/internal/bench"
	"liquid-ca/internal/core"
	"liquid-ca/internal/logger"
	"liquid-ca/internal/sims/liquid"
	"liquid-ca/internal/stats"
	"liquid-ca/internal/termview"
)

type worldOptions struct {
	Scenario string
	Width    int
	Height   int
	Seed     int64
	Flow     string
	Steps    int
}

type runOptions struct {
	Every    int
	Print    bool
	ShowFlow bool
	Colour   bool
	Format   string
	Settle   bool
	Quiet    bool
}

type sweepOptions struct {
	Speeds       []float64
	Compressions []float64
	Workers      int
	Top          int
	Quiet        bool
}

func main() {
	def := liquid.DefaultConfig()
	wo := worldOptions{Width: def.Width, Height: def.Height, Seed: def.Seed, Steps: 2000}
	ro := runOptions{Every: 100, Format: "table", Colour: true}
	so := sweepOptions{Workers: runtime.NumCPU(), Top: 10}
	logMode := "dev"

	flaggy.SetName("liquid-bench")
	flaggy.SetDescription("Headless runs and parameter sweeps for the liquid automaton")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.String(&logMode, "l", "log", "Log mode [dev|prod|silent]")

	run := flaggy.NewSubcommand("run")
	run.Description = "Step one world and report liquid statistics"
	bindWorld(run, &wo)
	run.Int(&ro.Every, "e", "every", "Sample statistics every N ticks (0 disables)")
	run.Bool(&ro.Print, "p", "print", "Print a frame at every sample")
	run.Bool(&ro.ShowFlow, "a", "arrows", "Draw flow arrows in printed frames")
	run.Bool(&ro.Colour, "c", "colour", "Colour printed frames")
	run.String(&ro.Format, "f", "format", "Report format [table|json|yaml]")
	run.Bool(&ro.Settle, "t", "until-settled", "Stop once every wet cell is settled")
	run.Bool(&ro.Quiet, "q", "quiet", "Hide the progress bar")
	flaggy.AttachSubcommand(run, 1)

	sweep := flaggy.NewSubcommand("sweep")
	sweep.Description = "Grid search over flow speed, compression and divisor symmetry"
	bindWorld(sweep, &wo)
	sweep.Float64Slice(&so.Speeds, "f", "speed", "Flow speed to try (repeatable)")
	sweep.Float64Slice(&so.Compressions, "m", "compression", "Max compression to try (repeatable)")
	sweep.Int(&so.Workers, "j", "workers", "Parallel worker count")
	sweep.Int(&so.Top, "k", "top", "Number of results to print")
	sweep.Bool(&so.Quiet, "q", "quiet", "Hide the progress bar")
	flaggy.AttachSubcommand(sweep, 1)

	flaggy.Parse()

	log := logger.New(logger.ParseMode(logMode))
	switch {
	case run.Used:
		if err := doRun(log, wo, ro); err != nil {
			log.Error("run failed", slog.Any("err", err))
			os.Exit(1)
		}
	case sweep.Used:
		if err := doSweep(log, wo, so); err != nil {
			log.Error("sweep failed", slog.Any("err", err))
			os.Exit(1)
		}
	default:
		flaggy.ShowHelpAndExit("a subcommand is required")
	}
}

func bindWorld(sc *flaggy.Subcommand, wo *worldOptions) {
	sc.String(&wo.Scenario, "s", "scenario", "Built-in scenario name or YAML path")
	sc.Int(&wo.Width, "x", "width", "World width (ignored with a scenario)")
	sc.Int(&wo.Height, "y", "height", "World height (ignored with a scenario)")
	sc.Int64(&wo.Seed, "r", "seed", "Layout seed")
	sc.String(&wo.Flow, "w", "flow", "Flow overrides as key=value,key=value")
	sc.Int(&wo.Steps, "n", "steps", "Maximum ticks per run")
}

func (wo worldOptions) config() liquid.Config {
	cfg := liquid.FromMap(core.ParseKV(wo.Flow))
	cfg.Width, cfg.Height, cfg.Seed = wo.Width, wo.Height, wo.Seed
	cfg.Scenario = wo.Scenario
	return cfg
}

func doRun(log *slog.Logger, wo worldOptions, ro runOptions) error {
	world, err := liquid.Open(wo.config())
	if err != nil {
		return err
	}
	world.Reset(0)
	size := world.Size()
	log.Info("run",
		slog.Int("w", size.W),
		slog.Int("h", size.H),
		slog.Int64("seed", world.Seed()),
		slog.Int("steps", wo.Steps),
	)

	view := termview.New(ro.Colour)
	view.MaxValue = world.FlowConfig().MaxValue

	bar := pb.StartNew(wo.Steps)
	if ro.Quiet || ro.Print {
		bar.SetWriter(io.Discard)
	}
	res := bench.Run(world, wo.Steps, ro.Every, ro.Settle, bench.Hooks{
		Tick: func() { bar.Increment() },
		Sample: func(w *liquid.World, r stats.Report) {
			log.Debug("sample",
				slog.Int("tick", r.Tick),
				slog.Float64("total", r.TotalLiquid),
				slog.Int("settled", r.SettledCells),
				slog.Int("wet", r.WetCells),
			)
			if ro.Print {
				fmt.Printf("tick %d\n%s\n", r.Tick, view.Frame(w.Grid(), ro.ShowFlow))
			}
		},
	})
	bar.Finish()

	log.Info("done",
		slog.Int("ticks", res.Final.Tick),
		slog.Int("settled_at", res.SettledAt),
		slog.Duration("elapsed", res.Elapsed),
	)
	title := fmt.Sprintf("liquid %dx%d seed %d", size.W, size.H, world.Seed())
	if wo.Scenario != "" {
		title = wo.Scenario + " " + title
	}
	return stats.RenderFor(ro.Format, title).Write(os.Stdout, res.Final)
}

func doSweep(log *slog.Logger, wo worldOptions, so sweepOptions) error {
	if len(so.Speeds) == 0 {
		so.Speeds = []float64{0.5, 0.75, 1}
	}
	if len(so.Compressions) == 0 {
		so.Compressions = []float64{0, 0.25, 0.5}
	}
	base := wo.config()
	if base.Scenario != "" {
		// Fail fast instead of silently sweeping the procedural layout.
		if _, err := liquid.Open(base); err != nil {
			return err
		}
	}
	cases := bench.Cases(so.Speeds, so.Compressions)
	log.Info("sweep",
		slog.Int("cases", len(cases)),
		slog.Int("workers", so.Workers),
		slog.Int("steps", wo.Steps),
	)

	bar := pb.StartNew(len(cases))
	if so.Quiet {
		bar.SetWriter(io.Discard)
	}
	results := bench.Sweep(base, cases, wo.Steps, so.Workers, func() { bar.Increment() })
	bar.Finish()

	top := so.Top
	if top <= 0 || top > len(results) {
		top = len(results)
	}
	fmt.Printf("%-4s %-36s %10s %12s %10s\n", "#", "case", "settled", "drift", "flowing")
	for i, r := range results[:top] {
		settled := "-"
		if r.SettledAt >= 0 {
			settled = fmt.Sprint(r.SettledAt)
		}
		fmt.Printf("%-4d %-36s %10s %12.4g %10d\n", i+1, r.Case, settled, r.Final.Drift, r.Final.FlowingCells)
	}
	return nil
}
