package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Component is a long-running part of the service. Run blocks until the
// component stops; Shutdown asks it to stop and should honour ctx.
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// App runs components together and shuts all of them down when the process
// is signalled or any component returns.
type App struct {
	comps   []Component
	log     *slog.Logger
	timeout time.Duration

	// signals is replaced in tests.
	signals func() (<-chan os.Signal, func())
}

// NewApp returns an App managing comps.
func NewApp(log *slog.Logger, comps ...Component) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{comps: comps, log: log, timeout: 5 * time.Second, signals: osSignals}
}

func osSignals() (<-chan os.Signal, func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return quit, func() { signal.Stop(quit) }
}

// Run starts every component and blocks until SIGINT/SIGTERM or the first
// component exit. It returns that component's error, or nil on a signal.
func (a *App) Run() error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit, stop := a.signals()
	defer stop()

	select {
	case sig := <-quit:
		a.log.Info("shutting down", slog.String("signal", sig.String()))
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Warn("shutdown", slog.Any("err", err))
		}
	}
}
