package app

import (
	"flag"
	"strconv"

	"liquid-ca/internal/core"
)

// Config represents the command-line parameters for the application.
type Config struct {
	Sim      string
	Scale    int
	TPS      int
	Seed     int64
	Scenario string
	Flow     string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "liquid", Scale: 6, TPS: 30, Seed: 1337}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.StringVar(&c.Scenario, "scenario", c.Scenario, "built-in scenario name or YAML path")
	fs.StringVar(&c.Flow, "flow", c.Flow, "overrides as key=value,key=value")
}

// SimConfig builds the factory configuration map. Explicit -flow entries win
// over the seed and scenario flags.
func (c *Config) SimConfig() map[string]string {
	out := map[string]string{"seed": strconv.FormatInt(c.Seed, 10)}
	if c.Scenario != "" {
		out["scenario"] = c.Scenario
	}
	for k, v := range core.ParseKV(c.Flow) {
		out[k] = v
	}
	return out
}
