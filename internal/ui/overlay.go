//go:build ebiten

package ui

import (
	"eca-morph/internal/core"
	"eca-morph/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay highlights the segment class of every live cell. O toggles it and
// B swaps the foreground value the scanner looks for.
type Overlay struct {
	sim     core.Sim
	scale   int
	painter *render.GridPainter
	classes []uint8

	show bool
	fg   uint8
}

// NewOverlay sizes an overlay for sim drawn at scale.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	s := sim.Size()
	return &Overlay{
		sim:     sim,
		scale:   scale,
		painter: render.NewGridPainter(s.W, s.H),
		classes: make([]uint8, s.W*s.H),
		fg:      1,
	}
}

// Update polls the toggle keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		o.show = !o.show
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		o.fg ^= 1
	}
}

// Draw classifies the current cells and blends the highlight over screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.show {
		return
	}
	render.ClassifySegments(o.classes, o.sim.Cells(), o.sim.Size().W, o.fg)
	o.painter.BlitPalette(screen, o.classes, render.SegmentPalette, o.scale)
}
