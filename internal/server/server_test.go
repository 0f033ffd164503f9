package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"liquid-ca/internal/errs"
	"liquid-ca/internal/sims/liquid"
	"liquid-ca/internal/stats"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	return NewDriver(liquid.New(24, 16), 7, 30, 1, nil)
}

func newTestServer(t *testing.T) (*Driver, *httptest.Server) {
	t.Helper()
	d := newTestDriver(t)
	srv := httptest.NewServer(NewHTTPServer("", d, nil).Handler())
	t.Cleanup(srv.Close)
	return d, srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestDriverAdvanceAndDrift(t *testing.T) {
	d := newTestDriver(t)
	d.Advance(50)
	if d.Tick() != 50 {
		t.Fatalf("tick = %d, want 50", d.Tick())
	}
	r := d.Stats()
	if r.Drift > 1e-9 {
		t.Fatalf("liquid should never be created, drift %v", r.Drift)
	}
}

func TestDriverPaintMovesReference(t *testing.T) {
	d := newTestDriver(t)
	before := d.Stats()
	if err := d.Paint(PaintRequest{X: 5, Y: 10, Action: "add", Amount: 0.5, Radius: 1}); err != nil {
		t.Fatal(err)
	}
	after := d.Stats()
	if after.TotalLiquid <= before.TotalLiquid {
		t.Fatal("painting should add liquid")
	}
	if math.Abs(after.Drift-before.Drift) > 1e-9 {
		t.Fatalf("painting should not count as drift: %v -> %v", before.Drift, after.Drift)
	}

	bad := []PaintRequest{
		{X: -1, Y: 0, Action: "add"},
		{X: 0, Y: 0, Action: "flood"},
		{X: 1, Y: 1, Action: "add", Radius: 99},
		{X: 1, Y: 1, Action: "add", Amount: -1},
	}
	for _, req := range bad {
		if err := d.Paint(req); errs.LevelOf(err) != errs.Warn {
			t.Fatalf("%+v: expected Warn error, got %v", req, err)
		}
	}
}

func TestDriverSubscribeDropsStale(t *testing.T) {
	d := newTestDriver(t)
	updates, cancel := d.Subscribe()
	defer cancel()
	d.Advance(1)
	d.Advance(1)
	d.Advance(1)
	snap := <-updates
	if snap.Tick != 3 {
		t.Fatalf("subscriber should see the newest snapshot, got tick %d", snap.Tick)
	}
	select {
	case s := <-updates:
		t.Fatalf("unexpected extra snapshot %d", s.Tick)
	default:
	}
}

func TestDriverRunAndShutdown(t *testing.T) {
	d := NewDriver(liquid.New(12, 10), 1, 200, 1, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run() }()
	deadline := time.Now().Add(2 * time.Second)
	for d.Tick() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if d.Tick() == 0 {
		t.Fatal("driver did not tick")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestStateAndStatsEndpoints(t *testing.T) {
	_, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Width != 24 || snap.Height != 16 || len(snap.Cells) != 24*16 {
		t.Fatalf("unexpected snapshot %dx%d with %d cells", snap.Width, snap.Height, len(snap.Cells))
	}
	if snap.Solid != liquid.SolidValue || snap.Seed != 7 {
		t.Fatalf("unexpected snapshot header %+v", snap)
	}

	resp2, err := http.Get(srv.URL + "/v1/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	var r stats.Report
	if err := json.NewDecoder(resp2.Body).Decode(&r); err != nil || r.Cells != 24*16 {
		t.Fatalf("stats: %v %+v", err, r)
	}
}

func TestPaintEndpointValidation(t *testing.T) {
	_, srv := newTestServer(t)
	ok := postJSON(t, srv.URL+"/v1/paint", PaintRequest{X: 3, Y: 3, Action: "solid"})
	if ok.StatusCode != http.StatusOK {
		t.Fatalf("paint status %d", ok.StatusCode)
	}
	bad := postJSON(t, srv.URL+"/v1/paint", PaintRequest{X: 300, Y: 3, Action: "solid"})
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of range paint should be 400, got %d", bad.StatusCode)
	}
	unknown := postJSON(t, srv.URL+"/v1/paint", map[string]any{"x": 1, "y": 1, "colour": "red"})
	if unknown.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field should be 400, got %d", unknown.StatusCode)
	}
}

func TestResetStepPauseParams(t *testing.T) {
	d, srv := newTestServer(t)
	step := postJSON(t, srv.URL+"/v1/step", stepRequest{Ticks: 5})
	if step.StatusCode != http.StatusOK || d.Tick() != 5 {
		t.Fatalf("step: status %d tick %d", step.StatusCode, d.Tick())
	}
	if bad := postJSON(t, srv.URL+"/v1/step", stepRequest{Ticks: 0}); bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero ticks should be 400, got %d", bad.StatusCode)
	}

	reset := postJSON(t, srv.URL+"/v1/reset", resetRequest{Seed: 42})
	var snap Snapshot
	if err := json.NewDecoder(reset.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Tick != 0 || snap.Seed != 42 {
		t.Fatalf("reset snapshot %+v", snap)
	}

	pause := postJSON(t, srv.URL+"/v1/pause", pauseRequest{Paused: true})
	if pause.StatusCode != http.StatusNoContent || !d.Snapshot().Paused {
		t.Fatalf("pause: status %d", pause.StatusCode)
	}

	set := postJSON(t, srv.URL+"/v1/params", setParamRequest{Key: "flow_speed", Value: 0.5})
	if set.StatusCode != http.StatusOK {
		t.Fatalf("params status %d", set.StatusCode)
	}
	snapParams, _ := d.Parameters()
	if p, _ := snapParams.Lookup("flow_speed"); p.Value != "0.5" {
		t.Fatalf("flow_speed = %q, want 0.5", p.Value)
	}
	if bad := postJSON(t, srv.URL+"/v1/params", setParamRequest{Key: "nope", Value: 1}); bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown param should be 400, got %d", bad.StatusCode)
	}
}

func TestCompressedResponse(t *testing.T) {
	_, srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/stats", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got %q", resp.Header.Get("Content-Encoding"))
	}
}

func TestWebsocketStream(t *testing.T) {
	d, srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first Snapshot
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}
	if first.Width != 24 {
		t.Fatalf("unexpected initial snapshot width %d", first.Width)
	}

	d.Advance(1)
	var next Snapshot
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("update: %v", err)
	}
	if next.Tick != 1 {
		t.Fatalf("update tick = %d, want 1", next.Tick)
	}

	if err := conn.WriteJSON(PaintRequest{X: 2, Y: 2, Action: "solid"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := d.Snapshot()
		if snap.Cells[2*snap.Width+2] == uint8(liquid.SolidValue) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("paint message over websocket was not applied")
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.Warnf("bad"), http.StatusBadRequest},
		{errs.Fatalf("broken"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
		{errs.Wrap(context.DeadlineExceeded, "tick"), http.StatusGatewayTimeout},
		{context.Canceled, http.StatusRequestTimeout},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("StatusCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

type fakeComponent struct {
	run      chan error
	shutdown bool
}

func (f *fakeComponent) Run() error { return <-f.run }

func (f *fakeComponent) Shutdown(context.Context) error {
	f.shutdown = true
	select {
	case f.run <- nil:
	default:
	}
	return nil
}

func TestAppStopsOnComponentError(t *testing.T) {
	failing := &fakeComponent{run: make(chan error, 1)}
	other := &fakeComponent{run: make(chan error, 1)}
	app := NewApp(nil, failing, other)
	app.signals = func() (<-chan os.Signal, func()) { return make(chan os.Signal), func() {} }

	boom := errors.New("boom")
	failing.run <- boom
	if err := app.Run(); !errors.Is(err, boom) {
		t.Fatalf("Run returned %v, want boom", err)
	}
	if !failing.shutdown || !other.shutdown {
		t.Fatal("every component should be shut down")
	}
}

func TestAppStopsOnSignal(t *testing.T) {
	comp := &fakeComponent{run: make(chan error)}
	app := NewApp(nil, comp)
	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM
	app.signals = func() (<-chan os.Signal, func()) { return sig, func() {} }
	if err := app.Run(); err != nil {
		t.Fatalf("signal shutdown should return nil, got %v", err)
	}
	if !comp.shutdown {
		t.Fatal("component not shut down")
	}
}
