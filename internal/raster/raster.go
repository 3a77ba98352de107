// Package raster projects a generation history onto a 2-D bit matrix and
// renders it to byte surfaces and image files.
package raster

import (
	"image"

	"eca-morph/internal/core"
	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
)

// Raster is a read-only bit matrix: row y is generation y, column x is cell x.
type Raster interface {
	Width() int
	Height() int
	// Row copies row y into a new slice.
	Row(y int) []uint8
	At(x, y int) uint8
}

// Bounds returns the image rectangle covered by r.
func Bounds(r Raster) image.Rectangle { return image.Rect(0, 0, r.Width(), r.Height()) }

// FromHistory returns a view over h.
func FromHistory(h *eca.History) Raster { return historyView{h: h} }

type historyView struct{ h *eca.History }

func (v historyView) Width() int        { return v.h.Width() }
func (v historyView) Height() int       { return v.h.Len() }
func (v historyView) Row(y int) []uint8 { return v.h.Row(y) }
func (v historyView) At(x, y int) uint8 { return v.h.At(x, y) }

// Bits is a standalone raster backed by a byte grid of 0/1 values. It is used
// for rasters decoded from images.
type Bits struct{ g *core.ByteGrid }

// NewBits builds a raster from rows of equal length. Rows are copied.
func NewBits(rows [][]uint8) (*Bits, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errs.Invalid("raster", len(rows), "raster must have at least one row and one column")
	}
	w := len(rows[0])
	g := core.NewByteGrid(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, errs.Invalid("raster", y, "rows must share one width")
		}
		dst := g.Row(y)
		for x, v := range row {
			if v != 0 {
				dst[x] = 1
			}
		}
	}
	return &Bits{g: g}, nil
}

// FromSurface thresholds a rendered surface back to bits: cells equal to
// foreground become 1, all others 0.
func FromSurface(s *core.ByteGrid, foreground uint8) *Bits {
	g := core.NewByteGrid(s.W, s.H)
	src, dst := s.Cells(), g.Cells()
	for i, v := range src {
		if v == foreground {
			dst[i] = 1
		}
	}
	return &Bits{g: g}
}

func (b *Bits) Width() int  { return b.g.W }
func (b *Bits) Height() int { return b.g.H }

func (b *Bits) Row(y int) []uint8 {
	out := make([]uint8, b.g.W)
	copy(out, b.g.Row(y))
	return out
}

func (b *Bits) At(x, y int) uint8 { return b.g.At(x, y) }
