package flow

import "strconv"

// Config holds the simulation-wide tuning constants.
type Config struct {
	// MaxValue is the liquid a cell holds when full and uncompressed.
	MaxValue float64
	// MinValue is the threshold below which liquid is discarded.
	MinValue float64
	// MaxCompression is the extra liquid a cell may hold per cell stacked above it.
	MaxCompression float64

	MinFlow   float64
	MaxFlow   float64
	FlowSpeed float64

	// SettleThreshold is the number of unchanged ticks before a cell settles.
	SettleThreshold int

	// LeftDivisor and RightDivisor scale lateral flow. They differ by default
	// (4 and 3); Symmetric returns the evenly spreading variant.
	LeftDivisor  float64
	RightDivisor float64
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		MaxValue:        1.0,
		MinValue:        0.005,
		MaxCompression:  0.25,
		MinFlow:         0.005,
		MaxFlow:         4.0,
		FlowSpeed:       1.0,
		SettleThreshold: 10,
		LeftDivisor:     4,
		RightDivisor:    3,
	}
}

// Symmetric returns a copy of c with both lateral divisors set to the left one.
func (c Config) Symmetric() Config {
	c.RightDivisor = c.LeftDivisor
	return c
}

// FromMap overlays flag-style key/value pairs onto base. Unknown keys and
// unparsable or out-of-range values are ignored.
func FromMap(base Config, cfg map[string]string) Config {
	c := base
	if cfg == nil {
		return c
	}
	positive := func(key string, dst *float64) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
				*dst = parsed
			}
		}
	}
	nonNegative := func(key string, dst *float64) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
				*dst = parsed
			}
		}
	}
	positive("max_value", &c.MaxValue)
	positive("min_value", &c.MinValue)
	nonNegative("max_compression", &c.MaxCompression)
	nonNegative("min_flow", &c.MinFlow)
	positive("max_flow", &c.MaxFlow)
	positive("flow_speed", &c.FlowSpeed)
	positive("left_divisor", &c.LeftDivisor)
	positive("right_divisor", &c.RightDivisor)
	if v, ok := cfg["settle_threshold"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.SettleThreshold = parsed
		}
	}
	if v, ok := cfg["symmetric"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil && parsed {
			c = c.Symmetric()
		}
	}
	return c
}

// ToMap returns the config in the key/value form accepted by FromMap.
func (c Config) ToMap() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return map[string]string{
		"max_value":        f(c.MaxValue),
		"min_value":        f(c.MinValue),
		"max_compression":  f(c.MaxCompression),
		"min_flow":         f(c.MinFlow),
		"max_flow":         f(c.MaxFlow),
		"flow_speed":       f(c.FlowSpeed),
		"left_divisor":     f(c.LeftDivisor),
		"right_divisor":    f(c.RightDivisor),
		"settle_threshold": strconv.Itoa(c.SettleThreshold),
	}
}
