package raster

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
	"eca-morph/internal/initstate"
	"eca-morph/internal/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule90(t *testing.T) Raster {
	t.Helper()
	e := eca.New(rule.Default())
	require.NoError(t, e.Configure(eca.Config{
		Rule: 90, Size: 9, Evolutions: 3,
		Init: initstate.Spec{Method: initstate.MethodSingleActive, Centered: true},
	}))
	h, err := e.Evolution(context.Background(), nil)
	require.NoError(t, err)
	return FromHistory(h)
}

func TestHistoryViewShape(t *testing.T) {
	r := rule90(t)
	assert.Equal(t, 9, r.Width())
	assert.Equal(t, 4, r.Height())
	assert.Equal(t, uint8(1), r.At(4, 0))
	assert.Equal(t, 9, Bounds(r).Dx())

	row := r.Row(0)
	row[4] = 0
	assert.Equal(t, uint8(1), r.At(4, 0), "Row must return a copy")
}

func TestRenderPalettes(t *testing.T) {
	bits, err := NewBits([][]uint8{{1, 0}, {0, 1}})
	require.NoError(t, err)

	dark := Render(bits, DarkOnes)
	assert.Equal(t, []uint8{0, 255, 255, 0}, dark.Cells())

	light := Render(bits, LightOnes)
	assert.Equal(t, []uint8{255, 0, 0, 255}, light.Cells())

	back := FromSurface(dark, DarkOnes.On)
	assert.Equal(t, []uint8{1, 0}, back.Row(0))
	assert.Equal(t, []uint8{0, 1}, back.Row(1))
}

func TestEncodeDecodeEveryFormat(t *testing.T) {
	surface := Render(rule90(t), DarkOnes)
	for _, f := range Formats() {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, surface, f), f)
		decoded, err := Decode(&buf)
		require.NoError(t, err, f)
		assert.True(t, surface.Equal(decoded), "format %s", f)

		bits := Threshold(decoded, 128, DarkOnes)
		assert.Equal(t, uint8(1), bits.At(4, 0))
		assert.Equal(t, uint8(0), bits.At(0, 0))
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, errs.ErrCollaboratorUnavailable)
}

func TestParseFormatAndPalette(t *testing.T) {
	f, err := FormatForPath("out/evolution.TIF")
	require.NoError(t, err)
	assert.Equal(t, TIFF, f)

	_, err = ParseFormat("jpeg")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	p, err := ParsePalette("light")
	require.NoError(t, err)
	assert.Equal(t, LightOnes, p)
	_, err = ParsePalette("sepia")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestNewBitsValidation(t *testing.T) {
	_, err := NewBits(nil)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = NewBits([][]uint8{{1, 0}, {1}})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestDataURL(t *testing.T) {
	url, err := DataURL(Render(rule90(t), LightOnes))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
}
