package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSim struct{}

func (stubSim) Name() string   { return "stub" }
func (stubSim) Size() Size     { return Size{W: 1, H: 1} }
func (stubSim) Reset(int64)    {}
func (stubSim) Step()          {}
func (stubSim) Cells() []uint8 { return []uint8{0} }

func TestRegistry(t *testing.T) {
	f := func(map[string]string) Sim { return stubSim{} }
	require.NoError(t, Register("stub-test", f))
	assert.Error(t, Register("stub-test", f))
	assert.Error(t, Register("", f))
	assert.Error(t, Register("nil-test", nil))

	got, ok := Lookup("stub-test")
	require.True(t, ok)
	assert.Equal(t, "stub", got(nil).Name())
	assert.Contains(t, Names(), "stub-test")
	_, ok = Lookup("missing")
	assert.False(t, ok)
}

func TestSnapshotLookup(t *testing.T) {
	s := ParameterSnapshot{Groups: []ParameterGroup{
		{Name: "Run", Params: []Parameter{{Key: "rule", Value: "22"}}},
		{Name: "Init", Params: []Parameter{{Key: "density", Value: "0.50"}}},
	}}
	p, ok := s.Lookup("density")
	require.True(t, ok)
	assert.Equal(t, "0.50", p.Value)
	_, ok = s.Lookup("size")
	assert.False(t, ok)
}

func TestFixedStep(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }
	assert.Equal(t, 10, fs.Rate())

	assert.True(t, fs.ShouldStep(), "first call fires")
	clock = clock.Add(50 * time.Millisecond)
	assert.False(t, fs.ShouldStep())
	clock = clock.Add(60 * time.Millisecond)
	assert.True(t, fs.ShouldStep())

	fs.SetRate(0)
	assert.Equal(t, 60, fs.Rate())
}
