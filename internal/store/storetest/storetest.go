// Package storetest checks store.Gateway implementations against one set of
// expectations.
package storetest

import (
	"context"
	"testing"
	"time"

	"eca-morph/internal/errs"
	"eca-morph/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises g with a save/load cycle, overwrite and missing-run lookups.
func Run(t *testing.T, g store.Gateway) {
	t.Helper()
	ctx := context.Background()

	run := store.RunRecord{
		RunID:     store.NewRunID(),
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Config:    store.RunConfig{Rule: 22, Size: 5, Evolutions: 2, Method: "single_active_cell"},
	}
	gens := []store.GenerationRecord{
		{RunID: run.RunID, Index: 0, Vector: []uint8{0, 0, 1, 0, 0}},
		{RunID: run.RunID, Index: 1, Vector: []uint8{0, 1, 1, 1, 0}},
		{RunID: run.RunID, Index: 2, Vector: []uint8{1, 0, 0, 0, 1}},
	}

	require.NoError(t, g.SaveRun(ctx, run))
	// Saved out of order on purpose; loads come back sorted by step.
	require.NoError(t, g.SaveGenerations(ctx, run.RunID, []store.GenerationRecord{gens[2], gens[0], gens[1]}))

	got, err := g.LoadRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, got.RunID)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, run.Config, got.Config)

	loaded, err := g.LoadGenerations(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, gens, loaded)

	replaced := store.GenerationRecord{RunID: run.RunID, Index: 1, Vector: []uint8{1, 1, 1, 1, 1}}
	require.NoError(t, g.SaveGenerations(ctx, run.RunID, []store.GenerationRecord{replaced}))
	loaded, err = g.LoadGenerations(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, replaced.Vector, loaded[1].Vector)

	_, err = g.LoadRun(ctx, "run_missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	empty, err := g.LoadGenerations(ctx, "run_missing")
	require.NoError(t, err)
	assert.Empty(t, empty)

	err = g.SaveRun(ctx, store.RunRecord{})
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, g.SaveRun(cancelled, run), context.Canceled)
}
