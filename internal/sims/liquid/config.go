package liquid

import (
	"strconv"
	"strings"

	"liquid-ca/internal/flow"
)

// Config controls the liquid world dimensions, its initial layout and the
// flow tuning.
type Config struct {
	Width  int
	Height int

	Seed int64

	// Scenario names a built-in layout or a YAML file. When set it replaces
	// procedural generation and fixes the world size.
	Scenario string

	// Fill is the fraction of rows, from the top, that start full of liquid.
	Fill float64
	// SolidChance is the per-row chance of a solid ledge below the liquid.
	SolidChance float64

	Flow flow.Config
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:       120,
		Height:      80,
		Seed:        1337,
		Fill:        0.3,
		SolidChance: 0.35,
		Flow:        flow.DefaultConfig(),
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Flow keys are forwarded to flow.FromMap.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["scenario"]; ok {
		c.Scenario = strings.TrimSpace(v)
	}
	if v, ok := cfg["fill"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Fill = parsed
		}
	}
	if v, ok := cfg["solid_chance"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.SolidChance = parsed
		}
	}
	c.Flow = flow.FromMap(c.Flow, cfg)
	return c
}
