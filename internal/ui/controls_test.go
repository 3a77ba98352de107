package ui

import (
	"strconv"
	"testing"

	"eca-morph/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type knobSim struct {
	level   int
	ratio   float64
	rejects bool
}

func (s *knobSim) Name() string    { return "knobs" }
func (s *knobSim) Size() core.Size { return core.Size{W: 4, H: 4} }
func (s *knobSim) Reset(int64)     {}
func (s *knobSim) Step()           {}
func (s *knobSim) Cells() []uint8  { return make([]uint8, 16) }

func (s *knobSim) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{Name: "k", Params: []core.Parameter{
		{Key: "level", Type: core.ParamTypeInt, Value: strconv.Itoa(s.level)},
		{Key: "ratio", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(s.ratio, 'f', -1, 64)},
	}}}}
}

func (s *knobSim) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "level", Label: "Level", Type: core.ParamTypeInt, Step: 2, Min: 0, Max: 5, HasMin: true, HasMax: true},
		{Key: "ratio", Label: "Ratio", Type: core.ParamTypeFloat, Step: 0.25, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "missing", Label: "Missing", Type: core.ParamTypeInt, Step: 1},
	}
}

func (s *knobSim) SetIntParameter(key string, v int) bool {
	if s.rejects || key != "level" {
		return false
	}
	s.level = v
	return true
}

func (s *knobSim) SetFloatParameter(key string, v float64) bool {
	if key != "ratio" {
		return false
	}
	s.ratio = v
	return true
}

func TestControlsRefreshAndClamp(t *testing.T) {
	sim := &knobSim{level: 4, ratio: 0.9}
	c := NewControls(sim, 200)
	require.Equal(t, 3, c.Len())
	c.Refresh(sim.Parameters())

	assert.Equal(t, "4", c.Value(0))
	assert.Equal(t, "0.9", c.Value(1))
	assert.Equal(t, emptyValue, c.Value(2))

	require.True(t, c.Adjust(0, 1))
	assert.Equal(t, 5, sim.level, "int steps clamp to the maximum")
	assert.False(t, c.CanAdjust(0, 1))

	require.True(t, c.Adjust(1, 1))
	assert.InDelta(t, 1.0, sim.ratio, 1e-9)
	assert.Equal(t, "1.0", c.Value(1))
	assert.False(t, c.Adjust(1, 1))

	assert.False(t, c.CanAdjust(2, 1), "controls without a value stay disabled")
	assert.False(t, c.CanAdjust(7, 1))
}

func TestControlsRejectedSetterKeepsValue(t *testing.T) {
	sim := &knobSim{level: 2, rejects: true}
	c := NewControls(sim, 200)
	c.Refresh(sim.Parameters())
	assert.False(t, c.Adjust(0, -1))
	assert.Equal(t, "2", c.Value(0))
}

func TestControlsHitTest(t *testing.T) {
	sim := &knobSim{level: 1}
	c := NewControls(sim, 200)
	c.Refresh(sim.Parameters())

	plus := c.states[0].plusRect
	i, dir, ok := c.HitTest(plus.Min.X+1, plus.Min.Y+1)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, dir)

	minus := c.states[1].minusRect
	i, dir, ok = c.HitTest(minus.Min.X, minus.Min.Y)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, -1, dir)

	_, _, ok = c.HitTest(0, 0)
	assert.False(t, ok)
	missing := c.states[2].plusRect
	_, _, ok = c.HitTest(missing.Min.X, missing.Min.Y)
	assert.False(t, ok)
}

func TestFormatFloatPrecision(t *testing.T) {
	assert.Equal(t, "0.5", formatFloat(core.ParameterControl{Step: 0.5}, 0.5))
	assert.Equal(t, "0.50", formatFloat(core.ParameterControl{Step: 0.05}, 0.5))
	assert.Equal(t, "0.500", formatFloat(core.ParameterControl{Step: 0.005}, 0.5))
	assert.Equal(t, "0.5000", formatFloat(core.ParameterControl{Step: 0.0001}, 0.5))
	assert.Equal(t, "0.50", formatFloat(core.ParameterControl{}, 0.5))
	assert.Equal(t, "Knobs Controls", title(&knobSim{}))
	assert.Equal(t, "Controls", title(nil))
}
