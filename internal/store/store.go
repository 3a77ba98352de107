// Package store persists run metadata and generation rows.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"eca-morph/internal/eca"
	"eca-morph/internal/errs"
	"eca-morph/internal/initstate"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a run id has no stored record.
var ErrNotFound = errors.New("run not found")

// RunConfig is the persisted form of an engine configuration.
type RunConfig struct {
	Rule       int     `json:"rule"`
	Size       int     `json:"size"`
	Evolutions int     `json:"evolutions"`
	Method     string  `json:"init_method"`
	Density    float64 `json:"density,omitempty"`
	Seed       string  `json:"seed,omitempty"`
	Centered   bool    `json:"centered,omitempty"`
	RandomSeed int64   `json:"random_seed,omitempty"`
	Backend    string  `json:"backend,omitempty"`
}

// ConfigOf captures cfg for storage.
func ConfigOf(cfg eca.Config, backend string) RunConfig {
	return RunConfig{
		Rule:       cfg.Rule,
		Size:       cfg.Size,
		Evolutions: cfg.Evolutions,
		Method:     string(cfg.Init.Method),
		Density:    cfg.Init.Density,
		Seed:       cfg.Init.Seed,
		Centered:   cfg.Init.Centered,
		RandomSeed: cfg.RandomSeed,
		Backend:    backend,
	}
}

// Engine rebuilds the engine configuration.
func (c RunConfig) Engine() eca.Config {
	return eca.Config{
		Rule:       c.Rule,
		Size:       c.Size,
		Evolutions: c.Evolutions,
		Init: initstate.Spec{
			Method:   initstate.Method(c.Method),
			Size:     c.Size,
			Density:  c.Density,
			Seed:     c.Seed,
			Centered: c.Centered,
		},
		RandomSeed: c.RandomSeed,
	}
}

// RunRecord is the metadata of one evolution run.
type RunRecord struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Config    RunConfig `json:"config"`
}

// GenerationRecord is one stored row of a run.
type GenerationRecord struct {
	RunID  string  `json:"run_id"`
	Index  int     `json:"step"`
	Vector []uint8 `json:"vector"`
}

// Gateway stores runs and their generations.
type Gateway interface {
	SaveRun(ctx context.Context, run RunRecord) error
	SaveGenerations(ctx context.Context, runID string, gens []GenerationRecord) error
	LoadRun(ctx context.Context, runID string) (RunRecord, error)
	LoadGenerations(ctx context.Context, runID string) ([]GenerationRecord, error)
	Close() error
}

// NewRunID returns a fresh run identifier.
func NewRunID() string { return "run_" + uuid.NewString() }

// Generations converts h into records for runID.
func Generations(runID string, h *eca.History) []GenerationRecord {
	if h == nil {
		return nil
	}
	out := make([]GenerationRecord, h.Len())
	for i := range out {
		out[i] = GenerationRecord{RunID: runID, Index: i, Vector: h.Row(i)}
	}
	return out
}

// Rows returns the vectors of gens ordered by index.
func Rows(gens []GenerationRecord) [][]uint8 {
	sorted := slices.Clone(gens)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	rows := make([][]uint8, len(sorted))
	for i, g := range sorted {
		rows[i] = g.Vector
	}
	return rows
}

// EncodeRow stores one byte per cell holding 0 or 1.
func EncodeRow(row []uint8) []byte {
	out := make([]byte, len(row))
	for i, v := range row {
		if v != 0 {
			out[i] = 1
		}
	}
	return out
}

// DecodeRow reverses EncodeRow.
func DecodeRow(b []byte) ([]uint8, error) {
	out := make([]uint8, len(b))
	for i, c := range b {
		if c > 1 {
			return nil, fmt.Errorf("decode row: invalid cell 0x%02x at %d", c, i)
		}
		out[i] = c
	}
	return out, nil
}

func validateRun(run RunRecord) error {
	if run.RunID == "" {
		return errs.Invalid("run_id", run.RunID, "is required")
	}
	return nil
}

// Memory is an in-process Gateway.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
	gens map[string]map[int][]uint8
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]RunRecord), gens: make(map[string]map[int][]uint8)}
}

func (m *Memory) SaveRun(ctx context.Context, run RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.RunID] = run
	return nil
}

func (m *Memory) SaveGenerations(ctx context.Context, runID string, gens []GenerationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byIndex := m.gens[runID]
	if byIndex == nil {
		byIndex = make(map[int][]uint8, len(gens))
		m.gens[runID] = byIndex
	}
	for _, g := range gens {
		byIndex[g.Index] = slices.Clone(g.Vector)
	}
	return nil
}

func (m *Memory) LoadRun(ctx context.Context, runID string) (RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return RunRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return run, nil
}

func (m *Memory) LoadGenerations(ctx context.Context, runID string) ([]GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byIndex := m.gens[runID]
	out := make([]GenerationRecord, 0, len(byIndex))
	for i, v := range byIndex {
		out = append(out, GenerationRecord{RunID: runID, Index: i, Vector: slices.Clone(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
