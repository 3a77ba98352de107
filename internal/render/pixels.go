// Package render converts viewer cell buffers into RGBA pixels.
package render

import (
	"image/color"

	"eca-morph/internal/scan"
)

// Segment classes written by ClassifySegments.
const (
	ClassNone uint8 = iota
	ClassIsolated
	ClassSegment
	ClassWrapped
)

// SegmentPalette colors each class; ClassNone is transparent.
var SegmentPalette = []color.RGBA{
	ClassNone:     {},
	ClassIsolated: {R: 240, G: 200, B: 40, A: 150},
	ClassSegment:  {R: 40, G: 160, B: 240, A: 110},
	ClassWrapped:  {R: 240, G: 60, B: 90, A: 140},
}

// fillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
func fillBinaryRGBA(buf []byte, cells []uint8, on, off color.Color) {
	onPx := rgba(on)
	offPx := rgba(off)
	for i, c := range cells {
		px := offPx
		if c != 0 {
			px = onPx
		}
		copy(buf[i*4:i*4+4], px[:])
	}
}

// fillPaletteRGBA maps each cell value to a palette entry, clamping values
// past the end. An empty palette clears buf to transparent black.
func fillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:len(cells)*4])
		return
	}
	last := len(palette) - 1
	for i, c := range cells {
		col := palette[min(int(c), last)]
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

func rgba(c color.Color) [4]byte {
	r, g, b, a := c.RGBA()
	return [4]byte{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

// ClassifySegments scans every w-wide row of cells and writes the segment
// class of each cell into out, which must have len(cells) entries.
func ClassifySegments(out, cells []uint8, w int, fg uint8) {
	clear(out)
	if w <= 0 {
		return
	}
	for y := 0; y*w < len(cells); y++ {
		row := cells[y*w : (y+1)*w]
		res, err := scan.ScanRow(row, y, fg)
		if err != nil {
			continue
		}
		dst := out[y*w : (y+1)*w]
		for _, s := range res.Segments {
			class := ClassSegment
			if s.Wraps() {
				class = ClassWrapped
			}
			for _, c := range s.Columns(w) {
				dst[c] = class
			}
		}
		for _, c := range res.Isolated {
			dst[c] = ClassIsolated
		}
	}
}
