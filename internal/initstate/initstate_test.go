package initstate

import (
	"testing"

	"eca-morph/internal/core"
	"eca-morph/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleActiveCell(t *testing.T) {
	row, err := SingleActiveCell(5, false)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 0, 0, 0, 0}, row)

	row, err = SingleActiveCell(5, true)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 1, 0, 0}, row)
}

func TestSingleInactiveCell(t *testing.T) {
	row, err := SingleInactiveCell(4)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 1, 0, 1}, row)
}

func TestUniformRandomDensityBounds(t *testing.T) {
	rng := core.NewRNG(1)
	row, err := UniformRandom(64, 0, rng)
	require.NoError(t, err)
	assert.NotContains(t, row, uint8(1))

	row, err = UniformRandom(64, 1, rng)
	require.NoError(t, err)
	assert.NotContains(t, row, uint8(0))

	for _, d := range []float64{-0.1, 1.5} {
		_, err = UniformRandom(8, d, rng)
		assert.ErrorIs(t, err, errs.ErrInvalidParameter, "density %v", d)
	}
}

func TestUniformRandomDeterministicPerSeed(t *testing.T) {
	a, err := UniformRandom(128, 0.3, core.NewRNG(42))
	require.NoError(t, err)
	b, err := UniformRandom(128, 0.3, core.NewRNG(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSeedInsert(t *testing.T) {
	row, err := SeedInsert(9, "101", 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 1, 0, 1, 0, 0, 0}, row)

	row, err = SeedInsert(6, "00", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 1, 0, 0, 1, 1}, row)

	row, err = SeedInsert(3, "011", 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 1}, row)
}

func TestSeedInsertRejectsBadInput(t *testing.T) {
	_, err := SeedInsert(2, "101", 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	_, err = SeedInsert(8, "10x", 0)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	_, err = SeedInsert(8, "1", 2)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestNonPositiveSize(t *testing.T) {
	for _, m := range Methods() {
		_, err := Build(Spec{Method: m, Size: 0, Seed: "1"}, nil)
		assert.ErrorIs(t, err, errs.ErrInvalidParameter, "method %s", m)
		assert.ErrorIs(t, Spec{Method: m, Size: -3}.Validate(), errs.ErrInvalidParameter)
	}
}

func TestParseMethodAliases(t *testing.T) {
	cases := map[string]Method{
		"single_cell":         MethodSingleActive,
		"single_cell_zero":    MethodSingleInactive,
		"random":              MethodUniformRandom,
		"seed":                MethodSeedInsert,
		"seed_zero":           MethodSeedInsertOnOnes,
		"SEED_INSERT_ON_ONES": MethodSeedInsertOnOnes,
	}
	for in, want := range cases {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseMethod("checkerboard")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestBuildMatchesSpecLength(t *testing.T) {
	for _, m := range Methods() {
		row, err := Build(Spec{Method: m, Size: 11, Density: 0.5, Seed: "0110"}, core.NewRNG(3))
		require.NoError(t, err, m)
		assert.Len(t, row, 11)
	}
}

func TestFormatBits(t *testing.T) {
	bits, err := ParseBits("010011", 0)
	require.NoError(t, err)
	assert.Equal(t, "010011", FormatBits(bits))
}
