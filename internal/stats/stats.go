// Package stats summarizes the state of a liquid grid.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"

	"liquid-ca/internal/flow"
)

var lang = language.English

// Report describes one grid at one tick.
type Report struct {
	Tick         int `json:"tick" yaml:"tick"`
	Cells        int `json:"cells" yaml:"cells"`
	OpenCells    int `json:"open_cells" yaml:"open_cells"`
	WetCells     int `json:"wet_cells" yaml:"wet_cells"`
	SettledCells int `json:"settled_cells" yaml:"settled_cells"`
	FlowingCells int `json:"flowing_cells" yaml:"flowing_cells"`
	// CompressedCells holds more than MaxValue.
	CompressedCells int `json:"compressed_cells" yaml:"compressed_cells"`

	TotalLiquid float64 `json:"total_liquid" yaml:"total_liquid"`
	MaxLiquid   float64 `json:"max_liquid" yaml:"max_liquid"`
	// MeanLiquid, StdLiquid and the quantiles are taken over wet cells.
	MeanLiquid   float64 `json:"mean_liquid" yaml:"mean_liquid"`
	StdLiquid    float64 `json:"std_liquid" yaml:"std_liquid"`
	MedianLiquid float64 `json:"median_liquid" yaml:"median_liquid"`
	P90Liquid    float64 `json:"p90_liquid" yaml:"p90_liquid"`

	// Drift is TotalLiquid minus the reference passed to Measure.
	Drift float64 `json:"drift" yaml:"drift"`
}

// Settled reports whether every wet cell has come to rest.
func (r Report) Settled() bool {
	return r.WetCells == r.SettledCells
}

// Measure collects a Report for g. reference is usually the total liquid at
// tick zero.
func Measure(g *flow.Grid, tick int, reference float64, maxValue float64) Report {
	r := Report{Tick: tick, Cells: g.Len()}
	wet := make([]float64, 0, g.Len())
	for _, c := range g.Cells() {
		if c.Type == flow.Solid {
			continue
		}
		r.OpenCells++
		if c.Flowing() {
			r.FlowingCells++
		}
		if c.Liquid <= 0 {
			continue
		}
		r.WetCells++
		if c.Settled {
			r.SettledCells++
		}
		if c.Liquid > maxValue {
			r.CompressedCells++
		}
		r.TotalLiquid += c.Liquid
		r.MaxLiquid = math.Max(r.MaxLiquid, c.Liquid)
		wet = append(wet, c.Liquid)
	}
	if len(wet) > 0 {
		r.MeanLiquid, r.StdLiquid = stat.MeanStdDev(wet, nil)
		if math.IsNaN(r.StdLiquid) {
			r.StdLiquid = 0
		}
		sort.Float64s(wet)
		r.MedianLiquid = stat.Quantile(0.5, stat.Empirical, wet, nil)
		r.P90Liquid = stat.Quantile(0.9, stat.Empirical, wet, nil)
	}
	r.Drift = r.TotalLiquid - reference
	return r
}

// Table formats r as a boxed two-column table.
func Table(title string, r Report) string {
	p := message.NewPrinter(lang)
	keys := []string{
		"Tick", "Cells", "Open", "Wet", "Settled", "Flowing", "Compressed",
		"Total liquid", "Max liquid", "Mean liquid", "Std liquid", "Median liquid", "P90 liquid", "Drift",
	}
	msg := map[string]string{
		"Tick":          p.Sprintf("%d", r.Tick),
		"Cells":         p.Sprintf("%d", r.Cells),
		"Open":          p.Sprintf("%d", r.OpenCells),
		"Wet":           p.Sprintf("%d", r.WetCells),
		"Settled":       p.Sprintf("%d", r.SettledCells),
		"Flowing":       p.Sprintf("%d", r.FlowingCells),
		"Compressed":    p.Sprintf("%d", r.CompressedCells),
		"Total liquid":  p.Sprintf("%.4f", r.TotalLiquid),
		"Max liquid":    p.Sprintf("%.4f", r.MaxLiquid),
		"Mean liquid":   p.Sprintf("%.4f", r.MeanLiquid),
		"Std liquid":    p.Sprintf("%.4f", r.StdLiquid),
		"Median liquid": p.Sprintf("%.4f", r.MedianLiquid),
		"P90 liquid":    p.Sprintf("%.4f", r.P90Liquid),
		"Drift":         fmt.Sprintf("%+.6f", r.Drift),
	}
	return fmtTable(title, keys, msg)
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := 0
	maxValLen := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(msg[k]); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	if tw := runewidth.StringWidth(title); tw > totalInner {
		maxValLen += tw - totalInner
		totalInner = tw
	}
	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	titleW := runewidth.StringWidth(title)
	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	b.WriteString(divider)
	for _, k := range keys {
		v := msg[k]
		b.WriteString("| " + k + blank(maxKeyLen-2-runewidth.StringWidth(k)) + " | " + v + blank(maxValLen-2-runewidth.StringWidth(v)) + " |\n")
	}
	b.WriteString(divider)
	return b.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
