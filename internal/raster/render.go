package raster

import (
	"strings"

	"eca-morph/internal/core"
	"eca-morph/internal/errs"
)

// Palette maps bits to surface bytes. The mapping is presentation only; it
// never changes the underlying bits.
type Palette struct {
	On  uint8
	Off uint8
}

var (
	// DarkOnes draws 1 cells black on white.
	DarkOnes = Palette{On: 0, Off: 255}
	// LightOnes draws 1 cells white on black.
	LightOnes = Palette{On: 255, Off: 0}
)

// ParsePalette accepts "dark" or "light".
func ParsePalette(s string) (Palette, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dark":
		return DarkOnes, nil
	case "light":
		return LightOnes, nil
	default:
		return Palette{}, errs.Invalid("render.palette", s, "expected dark or light")
	}
}

// Render draws r onto a new surface, one byte per cell and one row per
// generation.
func Render(r Raster, p Palette) *core.ByteGrid {
	w, h := r.Width(), r.Height()
	g := core.NewByteGrid(w, h)
	row := make([]uint8, w)
	for y := 0; y < h; y++ {
		dst := g.Row(y)
		copy(row, r.Row(y))
		for x, v := range row {
			if v != 0 {
				dst[x] = p.On
				continue
			}
			dst[x] = p.Off
		}
	}
	return g
}
