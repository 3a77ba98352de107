package morph

import (
	"context"
	"errors"
	"testing"

	"eca-morph/internal/core"
	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
	"eca-morph/internal/initstate"
	"eca-morph/internal/raster"
	"eca-morph/internal/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func surfaceOf(rows ...[]uint8) *core.ByteGrid {
	g := core.NewByteGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		copy(g.Row(y), row)
	}
	return g
}

func cross() Kernel { return Kernel{{0, 1, 0}, {1, 1, 1}, {0, 1, 0}} }

func TestFlatDilateErode(t *testing.T) {
	src := surfaceOf(
		[]uint8{0, 0, 0, 0, 0},
		[]uint8{0, 0, 0, 0, 0},
		[]uint8{0, 0, 255, 0, 0},
		[]uint8{0, 0, 0, 0, 0},
		[]uint8{0, 0, 0, 0, 0},
	)
	ctx := context.Background()

	d, err := Flat{}.Apply(ctx, src, Request{Op: Dilate, Kernel: cross(), Iterations: 1})
	require.NoError(t, err)
	want := surfaceOf(
		[]uint8{0, 0, 0, 0, 0},
		[]uint8{0, 0, 255, 0, 0},
		[]uint8{0, 255, 255, 255, 0},
		[]uint8{0, 0, 255, 0, 0},
		[]uint8{0, 0, 0, 0, 0},
	)
	assert.True(t, want.Equal(d))

	e, err := Flat{}.Apply(ctx, d, Request{Op: Erode, Kernel: cross(), Iterations: 1})
	require.NoError(t, err)
	assert.True(t, src.Equal(e), "erode undoes a cross dilation of a point")

	o, err := Flat{}.Apply(ctx, src, Request{Op: Open, Kernel: cross(), Iterations: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, countNonZero(o), "opening removes a lone point")

	g, err := Flat{}.Apply(ctx, src, Request{Op: Gradient, Kernel: cross(), Iterations: 1})
	require.NoError(t, err)
	assert.True(t, want.Equal(g), "gradient of a point equals its dilation")

	th, err := Flat{}.Apply(ctx, src, Request{Op: TopHat, Kernel: cross(), Iterations: 1})
	require.NoError(t, err)
	assert.True(t, src.Equal(th))

	bh, err := Flat{}.Apply(ctx, src, Request{Op: BlackHat, Kernel: cross(), Iterations: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, countNonZero(bh))

	assert.Equal(t, uint8(255), src.At(2, 2), "source must not be modified")
}

func countNonZero(g *core.ByteGrid) int {
	n := 0
	for _, v := range g.Cells() {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestParseKernel(t *testing.T) {
	k, err := ParseKernel("010;111")
	require.NoError(t, err)
	assert.Equal(t, DefaultKernel(), k)
	assert.Equal(t, "010;111", k.String())

	_, err = ParseKernel("01;111")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = ParseKernel("000")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
	_, err = ParseKernel("0a1")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestParseOpAliases(t *testing.T) {
	for in, want := range map[string]Op{"erosion": Open, "black-hat": BlackHat, "dilation": Dilate, "gradient": Gradient} {
		got, err := ParseOp(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseOp("skeleton")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func evolved(t *testing.T) *eca.Engine {
	t.Helper()
	e := eca.New(rule.Default())
	require.NoError(t, e.Configure(eca.Config{
		Rule: 22, Size: 50, Evolutions: 25,
		Init: initstate.Spec{Method: initstate.MethodSingleActive},
	}))
	return e
}

func TestPipelineRequiresEvolution(t *testing.T) {
	e := evolved(t)
	p := NewPipeline(e, raster.DarkOnes)
	_, err := p.Apply(context.Background(), Request{Op: Dilate, Kernel: DefaultKernel(), Iterations: 2})
	require.ErrorIs(t, err, errs.ErrRenderCacheState)
	assert.Equal(t, 0, p.Renders())
}

func TestPipelineRendersOnceAndKeepsOutputs(t *testing.T) {
	e := evolved(t)
	_, err := e.Evolution(context.Background(), nil)
	require.NoError(t, err)

	p := NewPipeline(e, raster.DarkOnes)
	reqs := []Request{
		{Op: Dilate, Kernel: DefaultKernel(), Iterations: 2},
		{Op: Open, Kernel: DefaultKernel(), Iterations: 2},
		{Op: Gradient, Kernel: DefaultKernel(), Iterations: 2},
		{Op: BlackHat, Kernel: DefaultKernel(), Iterations: 2},
		{Op: Dilate, Kernel: DefaultKernel(), Iterations: 1},
	}
	outs, err := p.Run(context.Background(), reqs...)
	require.NoError(t, err)
	require.Len(t, outs, len(reqs))

	assert.Equal(t, 1, p.Renders())
	assert.Equal(t, []string{"dilate_1", "open_1", "gradient_1", "blackhat_1", "dilate_2"}, p.OutputIDs())

	first, ok := p.Output("dilate_1")
	require.True(t, ok)
	assert.Equal(t, 2, first.Request.Iterations, "later dilation must not overwrite the first")

	_, err = e.Evolution(context.Background(), nil)
	require.NoError(t, err)
	_, err = p.Apply(context.Background(), reqs[0])
	require.NoError(t, err)
	assert.Equal(t, 2, p.Renders(), "a new run renders a new surface")
	assert.Equal(t, []string{"dilate_1"}, p.OutputIDs())
}

type failingBackend struct{}

func (failingBackend) Name() string { return "offline" }

func (failingBackend) Apply(context.Context, *core.ByteGrid, Request) (*core.ByteGrid, error) {
	return nil, errors.New("backend offline")
}

func TestPipelineBackendFailure(t *testing.T) {
	e := evolved(t)
	_, err := e.Evolution(context.Background(), nil)
	require.NoError(t, err)

	p := NewPipeline(e, raster.DarkOnes, WithBackend(failingBackend{}))
	_, err = p.Apply(context.Background(), Request{Op: Dilate, Kernel: DefaultKernel(), Iterations: 1})
	require.ErrorIs(t, err, errs.ErrCollaboratorUnavailable)
	assert.Empty(t, p.OutputIDs())

	s, err := p.Surface()
	require.NoError(t, err)
	assert.Equal(t, 50, s.W)
	assert.Equal(t, 26, s.H)
	assert.Equal(t, 1, p.Renders())
}

func TestRequestValidation(t *testing.T) {
	assert.ErrorIs(t, Request{Op: Dilate, Kernel: DefaultKernel()}.Validate(), errs.ErrInvalidParameter)
	assert.ErrorIs(t, Request{Op: "blur", Kernel: DefaultKernel(), Iterations: 1}.Validate(), errs.ErrInvalidParameter)
	assert.NoError(t, Request{Op: Close, Kernel: DefaultKernel(), Iterations: 1}.Validate())

	alias := Request{Op: "erosion", Kernel: DefaultKernel(), Iterations: 1}
	assert.ErrorIs(t, alias.Validate(), errs.ErrInvalidParameter, "aliases are resolved by ParseOp, not accepted raw")
	_, err := Flat{}.Apply(context.Background(), surfaceOf([]uint8{0, 255}), alias)
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}
