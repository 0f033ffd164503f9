// Package scenario loads liquid world layouts from YAML.
//
// A scenario is an ASCII map, one glyph per cell:
//
//	#      solid
//	. ' '  open, dry
//	~      open, full (MaxValue)
//	1-9    open, holding n/10 of MaxValue
//
// An optional legend maps extra glyphs to "solid", "open", "full" or a
// liquid amount, and an optional flow block overrides simulator tuning using
// the same keys as flow.FromMap.
package scenario

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"liquid-ca/internal/errs"
	"liquid-ca/internal/flow"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Scenario is a parsed layout.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Seed        int64          `yaml:"seed"`
	Legend      map[string]any `yaml:"legend"`
	Map         []string       `yaml:"map"`
	Flow        map[string]any `yaml:"flow"`

	w, h  int
	cells []glyph
}

type glyph struct {
	solid bool
	full  bool
	// amount is a fraction of MaxValue unless absolute is set.
	amount   float64
	absolute bool
}

var defaultLegend = map[rune]glyph{
	'#': {solid: true},
	'.': {},
	' ': {},
	'~': {full: true},
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errs.WrapWarn(err, "decode scenario yaml")
	}
	if err := s.compile(); err != nil {
		name := s.Name
		if name == "" {
			name = "unnamed"
		}
		return nil, errs.Wrap(err, fmt.Sprintf("scenario %q", name))
	}
	return s, nil
}

// Load returns a built-in scenario by name, or reads and parses the file at
// nameOrPath.
func Load(nameOrPath string) (*Scenario, error) {
	if data, err := builtinFS.ReadFile(path.Join("builtin", nameOrPath+".yaml")); err == nil {
		return Parse(data)
	}
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Warnf("unknown scenario %q (built-in: %s)", nameOrPath, strings.Join(Builtin(), ", "))
		}
		return nil, errs.Wrap(err, "read scenario")
	}
	return Parse(data)
}

// Builtin lists the embedded scenario names.
func Builtin() []string {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if n, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Width returns the map width in cells.
func (s *Scenario) Width() int { return s.w }

// Height returns the map height in cells.
func (s *Scenario) Height() int { return s.h }

// FlowConfig overlays the scenario's flow overrides onto base.
func (s *Scenario) FlowConfig(base flow.Config) flow.Config {
	if len(s.Flow) == 0 {
		return base
	}
	kv := make(map[string]string, len(s.Flow))
	for k, v := range s.Flow {
		kv[k] = fmt.Sprint(v)
	}
	return flow.FromMap(base, kv)
}

// Grid allocates a grid sized to the scenario and applies it.
func (s *Scenario) Grid(cfg flow.Config) *flow.Grid {
	g := flow.NewGrid(s.w, s.h)
	// Dimensions match by construction.
	_ = s.Apply(g, cfg)
	return g
}

// Apply overwrites g with the scenario layout. g must have the scenario's
// dimensions. Full cells receive cfg.MaxValue.
func (s *Scenario) Apply(g *flow.Grid, cfg flow.Config) error {
	if g.W != s.w || g.H != s.h {
		return errs.Warnf("scenario %q is %dx%d, grid is %dx%d", s.Name, s.w, s.h, g.W, g.H)
	}
	cells := g.Cells()
	for i, gl := range s.cells {
		c := flow.Cell{}
		switch {
		case gl.solid:
			c.Type = flow.Solid
		case gl.full:
			c.Liquid = cfg.MaxValue
		case gl.absolute:
			c.Liquid = gl.amount
		default:
			c.Liquid = gl.amount * cfg.MaxValue
		}
		cells[i] = c
	}
	return nil
}

func (s *Scenario) compile() error {
	if len(s.Map) == 0 {
		return errs.Warnf("map is empty")
	}
	legend, err := s.legend()
	if err != nil {
		return err
	}
	s.w = utf8.RuneCountInString(s.Map[0])
	s.h = len(s.Map)
	if s.w == 0 {
		return errs.Warnf("map rows are empty")
	}
	s.cells = make([]glyph, 0, s.w*s.h)
	for y, row := range s.Map {
		if n := utf8.RuneCountInString(row); n != s.w {
			return errs.Warnf("row %d has %d cells, expected %d", y, n, s.w)
		}
		x := 0
		for _, r := range row {
			gl, ok := legend[r]
			if !ok {
				return errs.Warnf("unknown glyph %q at (%d,%d)", r, x, y)
			}
			s.cells = append(s.cells, gl)
			x++
		}
	}
	return nil
}

func (s *Scenario) legend() (map[rune]glyph, error) {
	out := make(map[rune]glyph, len(defaultLegend)+9+len(s.Legend))
	for r, g := range defaultLegend {
		out[r] = g
	}
	for d := 1; d <= 9; d++ {
		out[rune('0'+d)] = glyph{amount: float64(d) / 10}
	}
	for key, val := range s.Legend {
		if utf8.RuneCountInString(key) != 1 {
			return nil, errs.Warnf("legend key %q must be a single glyph", key)
		}
		r, _ := utf8.DecodeRuneInString(key)
		g, err := parseGlyph(val)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("legend %q", key))
		}
		out[r] = g
	}
	return out, nil
}

func parseGlyph(v any) (glyph, error) {
	raw := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	switch raw {
	case "solid":
		return glyph{solid: true}, nil
	case "open", "empty":
		return glyph{}, nil
	case "full":
		return glyph{full: true}, nil
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount < 0 {
		return glyph{}, errs.Warnf("want solid, open, full or a non-negative amount, got %v", v)
	}
	return glyph{amount: amount, absolute: true}, nil
}
