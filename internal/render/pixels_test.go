package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillBinaryRGBA(t *testing.T) {
	buf := make([]byte, 8)
	fillBinaryRGBA(buf, []uint8{1, 0}, color.Black, color.White)
	assert.Equal(t, []byte{0, 0, 0, 255, 255, 255, 255, 255}, buf)
}

func TestFillPaletteRGBA(t *testing.T) {
	buf := make([]byte, 12)
	fillPaletteRGBA(buf, []uint8{0, 1, 9}, []color.RGBA{{R: 1, A: 2}, {G: 3, A: 4}})
	assert.Equal(t, []byte{1, 0, 0, 2, 0, 3, 0, 4, 0, 3, 0, 4}, buf, "out of range values clamp to the last entry")

	fillPaletteRGBA(buf, []uint8{0, 1, 2}, nil)
	assert.Equal(t, make([]byte, 12), buf)
}

func TestClassifySegments(t *testing.T) {
	cells := []uint8{
		1, 1, 0, 1,
		0, 1, 0, 0,
		0, 1, 1, 0,
	}
	out := make([]uint8, len(cells))
	ClassifySegments(out, cells, 4, 1)
	assert.Equal(t, []uint8{
		ClassWrapped, ClassWrapped, ClassNone, ClassWrapped,
		ClassNone, ClassIsolated, ClassNone, ClassNone,
		ClassNone, ClassSegment, ClassSegment, ClassNone,
	}, out)
}
