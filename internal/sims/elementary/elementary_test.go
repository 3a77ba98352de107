package elementary

import (
	"context"
	"testing"

	"eca-morph/internal/config"
	"eca-morph/internal/core"
	"eca-morph/internal/eca"
	"eca-morph/internal/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollMatchesEngineHistory(t *testing.T) {
	cfg := config.Default()
	cfg.Rule, cfg.Size, cfg.Evolutions = 30, 31, 15
	sim, err := New(rule.Full(), cfg)
	require.NoError(t, err)
	assert.Equal(t, core.Size{W: 31, H: 16}, sim.Size())

	ec, err := cfg.EngineConfig()
	require.NoError(t, err)
	engine := eca.New(rule.Full())
	require.NoError(t, engine.Configure(ec))
	h, err := engine.Evolution(context.Background(), nil)
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		sim.Step()
	}
	assert.Equal(t, 15, sim.Generation())
	cells := sim.Cells()
	for y := 0; y < 16; y++ {
		want := h.Row(15 - y)
		assert.Equal(t, want, cells[y*31:(y+1)*31], "window row %d", y)
	}
}

func TestRegisteredFactory(t *testing.T) {
	f, ok := core.Lookup(Name)
	require.True(t, ok)
	sim := f(map[string]string{"rule": "90", "w": "21", "h": "10"})
	assert.Equal(t, core.Size{W: 21, H: 11}, sim.Size())

	bad := f(map[string]string{"init": "seed", "seed": "1111111111111111111111111111111111111111111111111111111"})
	assert.Equal(t, config.Default().Size, bad.Size().W, "oversized seed falls back to defaults")
}

func TestRuleAndDensityControls(t *testing.T) {
	cfg := config.Default()
	sim, err := New(rule.Default(), cfg)
	require.NoError(t, err)

	assert.True(t, sim.SetIntParameter("rule", 23), "23 is missing so the next id up is chosen")
	assert.Equal(t, 26, sim.Rule())
	assert.True(t, sim.SetIntParameter("rule", 25))
	assert.Equal(t, 22, sim.Rule())
	assert.False(t, sim.SetIntParameter("rule", 196))
	assert.False(t, sim.SetIntParameter("size", 3))

	p, ok := sim.Parameters().Lookup("rule")
	require.True(t, ok)
	assert.Equal(t, "22", p.Value)

	assert.True(t, sim.SetFloatParameter("density", 0.25))
	assert.False(t, sim.SetFloatParameter("density", 2))
	p, _ = sim.Parameters().Lookup("density")
	assert.Equal(t, "0.25", p.Value)

	ctrls := sim.ParameterControls()
	require.Len(t, ctrls, 2)
	assert.InDelta(t, 195, ctrls[0].Max, 1e-9)
}
