// Package morph renders a generation history once and runs morphology
// transforms against the cached surface.
package morph

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"eca-morph/internal/core"
	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
	"eca-morph/internal/logging"
	"eca-morph/internal/raster"
)

// Op names a transform.
type Op string

const (
	Dilate   Op = "dilate"
	Erode    Op = "erode"
	Open     Op = "open"
	Close    Op = "close"
	Gradient Op = "gradient"
	TopHat   Op = "tophat"
	BlackHat Op = "blackhat"
)

// Ops lists the supported transforms.
func Ops() []Op { return []Op{Dilate, Erode, Open, Close, Gradient, TopHat, BlackHat} }

// ParseOp accepts an op name; "erosion" maps to Open and "black-hat" to
// BlackHat. "erosion" names the opening step of the usual pipeline.
func ParseOp(s string) (Op, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "dilation":
		return Dilate, nil
	case "erosion":
		return Open, nil
	case "gradation":
		return Gradient, nil
	case "black-hat", "black_hat":
		return BlackHat, nil
	case "top-hat", "top_hat":
		return TopHat, nil
	}
	for _, op := range Ops() {
		if string(op) == s {
			return op, nil
		}
	}
	return "", errs.Invalid("op", s, "unknown morphology operation")
}

// Request is one transform with its structuring element and iteration count.
type Request struct {
	Op         Op
	Kernel     Kernel
	Iterations int
}

// Validate checks the request parameters.
func (r Request) Validate() error {
	if !slices.Contains(Ops(), r.Op) {
		return errs.Invalid("op", r.Op, "unknown morphology operation; names go through ParseOp")
	}
	if r.Iterations < 1 {
		return errs.Invalid("iterations", r.Iterations, "must be at least 1")
	}
	return r.Kernel.Validate()
}

// Output is the result of one transform, stored under a unique id.
type Output struct {
	ID      string
	Request Request
	Surface *core.ByteGrid
}

// Source yields the history of the last completed evolution, or nil.
// *eca.Engine satisfies it.
type Source interface {
	History() *eca.History
}

// Pipeline caches the rendered surface of the source's current history and
// keeps every transform output under its own id. The surface is rendered by
// the first request that finds no cache for the current history.
type Pipeline struct {
	src     Source
	palette raster.Palette
	backend Backend

	mu       sync.Mutex
	rendered *eca.History
	surface  *core.ByteGrid
	renders  int
	seq      map[Op]int
	outputs  map[string]Output
	order    []string
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithBackend replaces the default Flat backend.
func WithBackend(b Backend) PipelineOption {
	return func(p *Pipeline) {
		if b != nil {
			p.backend = b
		}
	}
}

// NewPipeline builds a pipeline rendering src with palette.
func NewPipeline(src Source, palette raster.Palette, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		src:     src,
		palette: palette,
		backend: Flat{},
		seq:     make(map[Op]int),
		outputs: make(map[string]Output),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// surfaceLocked returns the cached surface, rendering it when the source has
// a history the cache does not cover yet. A new history resets the outputs.
func (p *Pipeline) surfaceLocked(op string) (*core.ByteGrid, error) {
	h := p.src.History()
	if h == nil {
		return nil, &errs.RenderCacheStateError{Op: op}
	}
	if p.surface != nil && p.rendered == h {
		return p.surface, nil
	}
	p.surface = raster.Render(raster.FromHistory(h), p.palette)
	p.rendered = h
	p.renders++
	p.seq = make(map[Op]int)
	p.outputs = make(map[string]Output)
	p.order = nil
	logging.Logger().Debug("raster rendered", "width", p.surface.W, "height", p.surface.H)
	return p.surface, nil
}

// Surface returns a copy of the rendered surface, rendering it if needed.
func (p *Pipeline) Surface() (*core.ByteGrid, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, err := p.surfaceLocked("render")
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Apply runs one transform. Backend failures leave the cache and earlier
// outputs untouched.
func (p *Pipeline) Apply(ctx context.Context, req Request) (Output, error) {
	if err := req.Validate(); err != nil {
		return Output{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	surface, err := p.surfaceLocked(string(req.Op))
	if err != nil {
		return Output{}, err
	}
	result, err := p.backend.Apply(ctx, surface.Clone(), req)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, err
		}
		return Output{}, errs.Unavailable("morphology backend "+p.backend.Name(), string(req.Op), err)
	}

	p.seq[req.Op]++
	out := Output{
		ID:      fmt.Sprintf("%s_%d", req.Op, p.seq[req.Op]),
		Request: req,
		Surface: result,
	}
	p.outputs[out.ID] = out
	p.order = append(p.order, out.ID)
	return out, nil
}

// Run applies reqs in order and stops at the first failure. Outputs produced
// before the failure are returned and stay cached.
func (p *Pipeline) Run(ctx context.Context, reqs ...Request) ([]Output, error) {
	outs := make([]Output, 0, len(reqs))
	for _, req := range reqs {
		out, err := p.Apply(ctx, req)
		if err != nil {
			return outs, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

// Output returns the stored result with the given id.
func (p *Pipeline) Output(id string) (Output, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.outputs[id]
	return out, ok
}

// OutputIDs lists stored result ids in creation order.
func (p *Pipeline) OutputIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.order)
}

// Renders reports how many times a surface has been rendered.
func (p *Pipeline) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}
