package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"liquid-ca/internal/core"
	"liquid-ca/internal/errs"
	"liquid-ca/internal/flow"
	"liquid-ca/internal/sims/liquid"
	"liquid-ca/internal/stats"
)

// Snapshot is the state published to clients.
type Snapshot struct {
	Tick   int   `json:"tick"`
	Seed   int64 `json:"seed"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Paused bool  `json:"paused"`
	// Cells holds one display value per cell, row-major: 0 dry, 1..Levels
	// liquid bands, Solid for walls. JSON encodes it as base64.
	Cells  []uint8      `json:"cells"`
	Levels int          `json:"levels"`
	Solid  int          `json:"solid"`
	Stats  stats.Report `json:"stats"`
}

// PaintRequest edits a square brush of cells centred on (X, Y).
type PaintRequest struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Action string  `json:"action"`
	Amount float64 `json:"amount"`
	Radius int     `json:"radius"`
}

const maxBrushRadius = 16

// Driver owns a liquid world and ticks it at a fixed rate. Every access to
// the world goes through the driver's mutex, so a tick is never observed
// half done.
type Driver struct {
	mu        sync.Mutex
	world     *liquid.World
	reference float64
	paused    bool

	tps            int
	broadcastEvery int
	log            *slog.Logger

	subMu sync.Mutex
	subs  map[chan Snapshot]struct{}

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewDriver wraps world, resetting it with seed. tps <= 0 selects 30.
// Subscribers receive a snapshot every broadcastEvery ticks (at least 1).
func NewDriver(world *liquid.World, seed int64, tps, broadcastEvery int, log *slog.Logger) *Driver {
	if tps <= 0 {
		tps = 30
	}
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	d := &Driver{
		world:          world,
		tps:            tps,
		broadcastEvery: broadcastEvery,
		log:            log,
		subs:           map[chan Snapshot]struct{}{},
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	world.Reset(seed)
	d.reference = flow.TotalLiquid(world.Grid())
	return d
}

// Run ticks the world until Shutdown is called.
func (d *Driver) Run() error {
	defer close(d.done)
	ticker := time.NewTicker(time.Second / time.Duration(d.tps))
	defer ticker.Stop()
	d.log.Info("driver started", slog.Int("tps", d.tps))
	for {
		select {
		case <-d.stop:
			d.log.Info("driver stopped", slog.Int("tick", d.Tick()))
			return nil
		case <-ticker.C:
			d.mu.Lock()
			paused := d.paused
			d.mu.Unlock()
			if !paused {
				d.Advance(1)
			}
		}
	}
}

// Shutdown stops Run and waits for it to return or ctx to expire.
func (d *Driver) Shutdown(ctx context.Context) error {
	d.stopOnce.Do(func() { close(d.stop) })
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Advance steps the world n times and notifies subscribers when a broadcast
// boundary is crossed.
func (d *Driver) Advance(n int) {
	publish := false
	d.mu.Lock()
	for i := 0; i < n; i++ {
		d.world.Step()
		if d.world.Tick()%d.broadcastEvery == 0 {
			publish = true
		}
	}
	var snap Snapshot
	if publish {
		snap = d.snapshotLocked()
	}
	d.mu.Unlock()
	if publish {
		d.broadcast(snap)
	}
}

// Tick returns the current world tick.
func (d *Driver) Tick() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.world.Tick()
}

// Snapshot copies the current state.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Stats measures the current state.
func (d *Driver) Stats() stats.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.measureLocked()
}

// SetPaused stops or resumes the tick loop. Advance still works while paused.
func (d *Driver) SetPaused(paused bool) {
	d.mu.Lock()
	d.paused = paused
	d.mu.Unlock()
}

// Reset rebuilds the world. A zero seed selects the configured one.
func (d *Driver) Reset(seed int64) Snapshot {
	d.mu.Lock()
	d.world.Reset(seed)
	d.reference = flow.TotalLiquid(d.world.Grid())
	snap := d.snapshotLocked()
	d.mu.Unlock()
	d.log.Info("world reset", slog.Int64("seed", snap.Seed))
	d.broadcast(snap)
	return snap
}

// Paint applies req. Liquid added or drained by painting shifts the drift
// reference so Stats keeps reporting only simulator drift.
func (d *Driver) Paint(req PaintRequest) error {
	if req.Radius < 0 || req.Radius > maxBrushRadius {
		return errs.Warnf("radius must be within [0,%d]", maxBrushRadius)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	size := d.world.Size()
	if req.X < 0 || req.Y < 0 || req.X >= size.W || req.Y >= size.H {
		return errs.Warnf("cell (%d,%d) is outside the %dx%d world", req.X, req.Y, size.W, size.H)
	}
	var apply func(x, y int) bool
	switch req.Action {
	case "add":
		amount := req.Amount
		if amount == 0 {
			amount = d.world.FlowConfig().MaxValue
		}
		if amount < 0 {
			return errs.Warnf("amount must be positive")
		}
		apply = func(x, y int) bool { return d.world.AddLiquid(x, y, amount) }
	case "remove":
		apply = func(x, y int) bool { return d.world.RemoveLiquid(x, y) }
	case "solid":
		apply = func(x, y int) bool { return d.world.SetSolid(x, y, true) }
	case "open":
		apply = func(x, y int) bool { return d.world.SetSolid(x, y, false) }
	case "toggle":
		apply = func(x, y int) bool { return d.world.ToggleSolid(x, y) }
	default:
		return errs.Warnf("unknown paint action %q", req.Action)
	}

	before := flow.TotalLiquid(d.world.Grid())
	for y := req.Y - req.Radius; y <= req.Y+req.Radius; y++ {
		for x := req.X - req.Radius; x <= req.X+req.Radius; x++ {
			apply(x, y)
		}
	}
	d.reference += flow.TotalLiquid(d.world.Grid()) - before
	return nil
}

// Parameters returns the world's tunables and the ones adjustable live.
func (d *Driver) Parameters() (core.ParameterSnapshot, []core.ParameterControl) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.world.Parameters(), d.world.ParameterControls()
}

// SetParameter updates one live tunable.
func (d *Driver) SetParameter(key string, value float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, ctrl := range d.world.ParameterControls() {
		if ctrl.Key != key {
			continue
		}
		ok := false
		if ctrl.Type == core.ParamTypeInt {
			ok = d.world.SetIntParameter(key, int(value))
		} else {
			ok = d.world.SetFloatParameter(key, value)
		}
		if !ok {
			return errs.Warnf("value %v rejected for %q", value, key)
		}
		return nil
	}
	return errs.Warnf("unknown parameter %q", key)
}

// Subscribe registers for snapshots. Slow subscribers miss intermediate
// snapshots rather than stalling the tick loop. Call cancel when done.
func (d *Driver) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	d.subMu.Lock()
	d.subs[ch] = struct{}{}
	d.subMu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.subMu.Lock()
			delete(d.subs, ch)
			d.subMu.Unlock()
		})
	}
}

func (d *Driver) broadcast(s Snapshot) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	for ch := range d.subs {
		select {
		case ch <- s:
		default:
			// Replace the stale snapshot with the new one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

func (d *Driver) snapshotLocked() Snapshot {
	size := d.world.Size()
	cells := make([]uint8, len(d.world.Cells()))
	copy(cells, d.world.Cells())
	return Snapshot{
		Tick:   d.world.Tick(),
		Seed:   d.world.Seed(),
		Width:  size.W,
		Height: size.H,
		Paused: d.paused,
		Cells:  cells,
		Levels: liquid.Levels,
		Solid:  liquid.SolidValue,
		Stats:  d.measureLocked(),
	}
}

func (d *Driver) measureLocked() stats.Report {
	return stats.Measure(d.world.Grid(), d.world.Tick(), d.reference, d.world.FlowConfig().MaxValue)
}
