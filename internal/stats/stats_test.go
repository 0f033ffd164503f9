package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"liquid-ca/internal/flow"
)

func sampleGrid() *flow.Grid {
	g := flow.NewGrid(4, 1)
	cells := g.Cells()
	cells[0] = flow.Cell{Type: flow.Solid}
	cells[1] = flow.Cell{Liquid: 1.2, Settled: true}
	cells[2] = flow.Cell{Liquid: 0.4}
	cells[2].Flow[flow.Left] = true
	return g
}

func TestMeasure(t *testing.T) {
	r := Measure(sampleGrid(), 7, 1.5, 1)
	if r.Tick != 7 || r.Cells != 4 || r.OpenCells != 3 || r.WetCells != 2 {
		t.Fatalf("unexpected counts %+v", r)
	}
	if r.SettledCells != 1 || r.FlowingCells != 1 || r.CompressedCells != 1 {
		t.Fatalf("unexpected state counts %+v", r)
	}
	if math.Abs(r.TotalLiquid-1.6) > 1e-12 || r.MaxLiquid != 1.2 {
		t.Fatalf("unexpected totals %+v", r)
	}
	if math.Abs(r.MeanLiquid-0.8) > 1e-12 {
		t.Fatalf("mean = %v, want 0.8", r.MeanLiquid)
	}
	// Sample standard deviation of {0.4, 1.2}.
	if math.Abs(r.StdLiquid-math.Sqrt(0.32)) > 1e-12 {
		t.Fatalf("std = %v", r.StdLiquid)
	}
	if math.Abs(r.Drift-0.1) > 1e-12 {
		t.Fatalf("drift = %v, want 0.1", r.Drift)
	}
	if r.Settled() {
		t.Fatal("one wet cell is still active")
	}
}

func TestMeasureDryGrid(t *testing.T) {
	r := Measure(flow.NewGrid(3, 3), 0, 0, 1)
	if r.WetCells != 0 || r.MeanLiquid != 0 || r.StdLiquid != 0 || !r.Settled() {
		t.Fatalf("dry grid report %+v", r)
	}
}

func TestTableAlignment(t *testing.T) {
	out := Table("basin", Measure(sampleGrid(), 1234, 0, 1))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := len(lines[0])
	for i, l := range lines {
		if len(l) != width {
			t.Fatalf("line %d has width %d, want %d:\n%s", i, len(l), width, out)
		}
	}
	if !strings.Contains(out, "1,234") {
		t.Fatalf("tick should use grouped digits:\n%s", out)
	}
}

func TestRenderers(t *testing.T) {
	r := Measure(sampleGrid(), 3, 0, 1)

	var buf bytes.Buffer
	if err := RenderFor("json", "").Write(&buf, r); err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.WetCells != 2 {
		t.Fatalf("json render: %v %+v", err, decoded)
	}

	buf.Reset()
	if err := RenderFor("yaml", "").Write(&buf, r); err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil || doc["wet_cells"] != 2 {
		t.Fatalf("yaml render: %v %v", err, doc)
	}

	buf.Reset()
	if err := RenderFor("table", "t").Write(&buf, r); err != nil || !strings.HasPrefix(buf.String(), "+") {
		t.Fatalf("table render: %v %q", err, buf.String())
	}
}
