// Package eca evolves one-dimensional binary cellular automata on a ring.
package eca

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"eca-morph/internal/core"
	"eca-morph/internal/errs"
	"eca-morph/internal/initstate"
	"eca-morph/internal/logging"
	"eca-morph/internal/rule"
)

// State is the lifecycle position of an Engine.
type State int

const (
	Unconfigured State = iota
	Configured
	Running
	Complete
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config describes one run.
type Config struct {
	Rule       int
	Size       int
	Evolutions int
	Init       initstate.Spec
	// RandomSeed feeds the uniform random initializer.
	RandomSeed int64
}

// Engine owns the generation history of one run at a time. It is safe for
// concurrent use; calls are serialized.
type Engine struct {
	table   *rule.Table
	backend Backend

	mu      sync.Mutex
	cfg     Config
	rule    rule.Rule
	initial []uint8
	state   State
	history *History
}

// Option customizes an Engine.
type Option func(*Engine)

// WithBackend selects the per-generation execution backend.
func WithBackend(b Backend) Option {
	return func(e *Engine) {
		if b != nil {
			e.backend = b
		}
	}
}

// New returns an unconfigured engine using rules from table.
func New(table *rule.Table, opts ...Option) *Engine {
	if table == nil {
		table = rule.Default()
	}
	e := &Engine{table: table, backend: Serial{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Configure validates cfg and computes the initial row. On error the engine
// is left unconfigured with no history.
func (e *Engine) Configure(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = Unconfigured
	e.history = nil
	e.initial = nil
	e.rule = nil

	if cfg.Size <= 0 {
		return errs.Invalid("size", cfg.Size, "must be positive")
	}
	if cfg.Evolutions < 0 {
		return errs.Invalid("evolutions", cfg.Evolutions, "must not be negative")
	}
	if cfg.Evolutions == math.MaxInt {
		return errs.Invalid("evolutions", cfg.Evolutions, "generation count overflows")
	}
	r, err := e.table.Lookup(cfg.Rule)
	if err != nil {
		return err
	}
	cfg.Init.Size = cfg.Size
	initial, err := initstate.Build(cfg.Init, core.NewRNG(cfg.RandomSeed))
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.rule = r
	e.initial = initial
	e.state = Configured
	return nil
}

// Evolution runs the configured number of generations starting from start,
// or from the configured initial row when start is nil. It may be called
// repeatedly; each call replaces the previous history. Cancellation is
// honored between generations and discards the partial history.
func (e *Engine) Evolution(ctx context.Context, start []uint8) (*History, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Unconfigured {
		return nil, errs.Invalid("engine", e.state, "configure must be called before evolution")
	}
	if start == nil {
		start = e.initial
	}
	if len(start) != e.cfg.Size {
		return nil, errs.Invalid("start_row", len(start), fmt.Sprintf("length must equal size %d", e.cfg.Size))
	}

	e.state = Running
	e.history = nil
	began := time.Now()

	h := newHistory(e.cfg.Size, min(e.cfg.Evolutions+1, maxPrealloc))
	cur := normalize(start)
	h.append(cur)
	for i := 0; i < e.cfg.Evolutions; i++ {
		if err := ctx.Err(); err != nil {
			e.state = Configured
			return nil, err
		}
		next := make([]uint8, len(cur))
		if err := e.backend.Step(ctx, e.rule, cur, next); err != nil {
			e.state = Configured
			return nil, err
		}
		h.append(next)
		cur = next
	}

	e.history = h
	e.state = Complete
	logging.Logger().Debug("evolution complete",
		"rule", e.cfg.Rule,
		"size", e.cfg.Size,
		"evolutions", e.cfg.Evolutions,
		"backend", e.backend.Name(),
		"elapsed", time.Since(began))
	return h, nil
}

// normalize copies row and clamps every cell to 0 or 1.
func normalize(row []uint8) []uint8 {
	out := slices.Clone(row)
	for i, v := range out {
		if v != 0 {
			out[i] = 1
		}
	}
	return out
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Config returns the active configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Initial returns a copy of the configured initial row.
func (e *Engine) Initial() []uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.initial)
}

// History returns the history of the last completed run, or nil.
func (e *Engine) History() *History {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history
}

// Backend returns the execution backend.
func (e *Engine) Backend() Backend { return e.backend }
