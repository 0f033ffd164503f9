package liquid

import (
	"math"

	"liquid-ca/internal/core"
	"liquid-ca/internal/flow"
)

func (w *World) Parameters() core.ParameterSnapshot {
	fc := w.sim.Config()
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				core.IntParam("w", "Width", w.w),
				core.IntParam("h", "Height", w.h),
				core.Int64Param("seed", "Seed", w.seed),
				core.IntParam("tick", "Tick", w.tick),
			},
		},
		{
			Name: "Layout",
			Params: []core.Parameter{
				core.FloatParam("fill", "Fill", w.cfg.Fill),
				core.FloatParam("solid_chance", "Ledge chance", w.cfg.SolidChance),
			},
		},
		{
			Name: "Flow",
			Params: []core.Parameter{
				core.FloatParam("max_value", "Max value", fc.MaxValue),
				core.FloatParam("min_value", "Min value", fc.MinValue),
				core.FloatParam("max_compression", "Compression", fc.MaxCompression),
				core.FloatParam("min_flow", "Min flow", fc.MinFlow),
				core.FloatParam("max_flow", "Max flow", fc.MaxFlow),
				core.FloatParam("flow_speed", "Flow speed", fc.FlowSpeed),
				core.FloatParam("left_divisor", "Left divisor", fc.LeftDivisor),
				core.FloatParam("right_divisor", "Right divisor", fc.RightDivisor),
				core.IntParam("settle_threshold", "Settle ticks", fc.SettleThreshold),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

var liquidControls = []core.ParameterControl{
	{Key: "flow_speed", Label: "Flow speed", Type: core.ParamTypeFloat, Step: 0.05, Min: 0.05, Max: 1, HasMin: true, HasMax: true},
	{Key: "max_compression", Label: "Compression", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "min_flow", Label: "Min flow", Type: core.ParamTypeFloat, Step: 0.005, Min: 0, Max: 0.1, HasMin: true, HasMax: true},
	{Key: "max_flow", Label: "Max flow", Type: core.ParamTypeFloat, Step: 0.5, Min: 0.5, Max: 8, HasMin: true, HasMax: true},
	{Key: "left_divisor", Label: "Left divisor", Type: core.ParamTypeFloat, Step: 0.5, Min: 1, Max: 8, HasMin: true, HasMax: true},
	{Key: "right_divisor", Label: "Right divisor", Type: core.ParamTypeFloat, Step: 0.5, Min: 1, Max: 8, HasMin: true, HasMax: true},
	{Key: "settle_threshold", Label: "Settle ticks", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 120, HasMin: true, HasMax: true},
}

// ParameterControls lists the tunables the HUD can adjust while running.
func (w *World) ParameterControls() []core.ParameterControl {
	out := make([]core.ParameterControl, len(liquidControls))
	copy(out, liquidControls)
	return out
}

func controlFor(key string) (core.ParameterControl, bool) {
	for _, c := range liquidControls {
		if c.Key == key {
			return c, true
		}
	}
	return core.ParameterControl{}, false
}

// SetFloatParameter updates a floating point flow tunable. Settled cells are
// woken so the change applies everywhere.
func (w *World) SetFloatParameter(key string, value float64) bool {
	ctrl, ok := controlFor(key)
	if !ok || ctrl.Type != core.ParamTypeFloat || math.IsNaN(value) {
		return false
	}
	value = ctrl.Clamp(value)
	fc := w.sim.Config()
	switch key {
	case "flow_speed":
		fc.FlowSpeed = value
	case "max_compression":
		fc.MaxCompression = value
	case "min_flow":
		fc.MinFlow = value
	case "max_flow":
		fc.MaxFlow = value
	case "left_divisor":
		fc.LeftDivisor = value
	case "right_divisor":
		fc.RightDivisor = value
	}
	w.applyFlow(fc)
	return true
}

// SetIntParameter updates an integer flow tunable.
func (w *World) SetIntParameter(key string, value int) bool {
	ctrl, ok := controlFor(key)
	if !ok || ctrl.Type != core.ParamTypeInt {
		return false
	}
	value = int(ctrl.Clamp(float64(value)))
	fc := w.sim.Config()
	switch key {
	case "settle_threshold":
		fc.SettleThreshold = value
	}
	w.applyFlow(fc)
	return true
}

// SetFlowConfig replaces the flow tuning wholesale.
func (w *World) SetFlowConfig(fc flow.Config) {
	w.applyFlow(fc)
}

func (w *World) applyFlow(fc flow.Config) {
	w.cfg.Flow = fc
	w.sim.SetConfig(fc)
	w.wake()
}
