package app

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("ca", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)

	require.NoError(t, fs.Parse([]string{"-scale", "4", "-set", "rule=30", "-set", "Size = 80", "-hud", "0"}))
	assert.Equal(t, "elementary", cfg.Sim)
	assert.Equal(t, 4, cfg.Scale)
	assert.Equal(t, 0, cfg.HUDWidth)
	assert.Equal(t, Settings{"rule": "30", "size": "80"}, cfg.Set)
	assert.Equal(t, "rule=30,size=80", cfg.Set.String())
	assert.NoError(t, cfg.Validate())
}

func TestConfigRejectsBadValues(t *testing.T) {
	fs := flag.NewFlagSet("ca", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	NewConfig().Bind(fs)
	assert.Error(t, fs.Parse([]string{"-set", "rule"}))

	cfg := NewConfig()
	cfg.Scale = 0
	assert.Error(t, cfg.Validate())
	cfg = NewConfig()
	cfg.TPS = -1
	assert.Error(t, cfg.Validate())
}
