package morph

import (
	"context"

	"eca-morph/internal/core"
	"eca-morph/internal/errs"
)

// Backend applies one transform to a surface. Implementations must not
// modify src.
type Backend interface {
	Name() string
	Apply(ctx context.Context, src *core.ByteGrid, req Request) (*core.ByteGrid, error)
}

// Flat implements grayscale morphology with a flat structuring element:
// dilation takes the neighborhood maximum, erosion the minimum. Pixels
// outside the surface are ignored, matching the usual constant-border
// convention.
type Flat struct{}

// Name identifies the backend.
func (Flat) Name() string { return "flat" }

// Apply runs req.Op for req.Iterations iterations.
func (Flat) Apply(ctx context.Context, src *core.ByteGrid, req Request) (*core.ByteGrid, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	offs := req.Kernel.offsets()
	n := req.Iterations
	dilate := func(g *core.ByteGrid) *core.ByteGrid { return repeat(g, n, offs, maxOf) }
	erode := func(g *core.ByteGrid) *core.ByteGrid { return repeat(g, n, offs, minOf) }

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch req.Op {
	case Dilate:
		return dilate(src), nil
	case Erode:
		return erode(src), nil
	case Open:
		return dilate(erode(src)), nil
	case Close:
		return erode(dilate(src)), nil
	case Gradient:
		return subtract(dilate(src), erode(src)), nil
	case TopHat:
		return subtract(src, dilate(erode(src))), nil
	case BlackHat:
		return subtract(erode(dilate(src)), src), nil
	default:
		return nil, errs.Invalid("op", req.Op, "unknown morphology operation")
	}
}

type reducer func(a, b uint8) uint8

func maxOf(a, b uint8) uint8 { return max(a, b) }
func minOf(a, b uint8) uint8 { return min(a, b) }

func repeat(g *core.ByteGrid, n int, offs []offset, f reducer) *core.ByteGrid {
	out := g
	for i := 0; i < n; i++ {
		out = filter(out, offs, f)
	}
	if out == g {
		out = g.Clone()
	}
	return out
}

func filter(src *core.ByteGrid, offs []offset, f reducer) *core.ByteGrid {
	out := core.NewByteGrid(src.W, src.H)
	for y := 0; y < src.H; y++ {
		for x := 0; x < src.W; x++ {
			acc := src.At(x, y)
			seeded := false
			for _, o := range offs {
				sx, sy := x+o.dx, y+o.dy
				if !src.In(sx, sy) {
					continue
				}
				v := src.At(sx, sy)
				if !seeded {
					acc = v
					seeded = true
					continue
				}
				acc = f(acc, v)
			}
			out.Set(x, y, acc)
		}
	}
	return out
}

func subtract(a, b *core.ByteGrid) *core.ByteGrid {
	out := core.NewByteGrid(a.W, a.H)
	ac, bc, oc := a.Cells(), b.Cells(), out.Cells()
	for i := range oc {
		if ac[i] > bc[i] {
			oc[i] = ac[i] - bc[i]
		}
	}
	return out
}
