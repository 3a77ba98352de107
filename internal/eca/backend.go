package eca

import (
	"context"
	"runtime"
	"strings"

	"eca-morph/internal/errs"
	"eca-morph/internal/rule"

	"golang.org/x/sync/errgroup"
)

// Backend computes one generation from the previous one. Implementations may
// split the row across workers but must finish the whole generation before
// returning; generations are never overlapped.
type Backend interface {
	Name() string
	Step(ctx context.Context, r rule.Rule, cur, next []uint8) error
}

// Step writes the successor of cur into next using ring neighbors: cell 0
// reads cell len-1 as its left neighbor and cell len-1 reads cell 0 as its
// right neighbor. cur and next must have equal length and must not alias.
func Step(r rule.Rule, cur, next []uint8) {
	stepRange(r, cur, next, 0, len(cur))
}

func stepRange(r rule.Rule, cur, next []uint8, lo, hi int) {
	w := len(cur)
	for x := lo; x < hi; x++ {
		left := cur[(x-1+w)%w]
		right := cur[(x+1)%w]
		next[x] = r.Evaluate(left, cur[x], right) & 1
	}
}

// Serial applies the rule on the calling goroutine.
type Serial struct{}

// Name identifies the backend.
func (Serial) Name() string { return "serial" }

// Step computes the whole generation in one pass.
func (Serial) Step(_ context.Context, r rule.Rule, cur, next []uint8) error {
	Step(r, cur, next)
	return nil
}

// Parallel splits each generation into contiguous column ranges evaluated
// concurrently. Rows shorter than MinChunk cells are computed serially.
type Parallel struct {
	Workers  int
	MinChunk int
}

const defaultMinChunk = 4096

// Name identifies the backend.
func (p Parallel) Name() string { return "parallel" }

// Step fans the column ranges out to at most Workers goroutines and waits
// for all of them.
func (p Parallel) Step(ctx context.Context, r rule.Rule, cur, next []uint8) error {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	minChunk := p.MinChunk
	if minChunk <= 0 {
		minChunk = defaultMinChunk
	}
	w := len(cur)
	if workers == 1 || w <= minChunk {
		Step(r, cur, next)
		return nil
	}
	chunk := (w + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < w; lo += chunk {
		hi := min(lo+chunk, w)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stepRange(r, cur, next, lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// ParseBackend maps "serial" or "parallel" to a Backend.
func ParseBackend(kind string, workers int) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "serial", "cpu":
		return Serial{}, nil
	case "parallel", "vector":
		return Parallel{Workers: workers}, nil
	default:
		return nil, errs.Invalid("backend", kind, "expected serial or parallel")
	}
}
