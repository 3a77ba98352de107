package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"eca-morph/internal/errs"
	"eca-morph/internal/store"
	"eca-morph/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "eca.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGateway(t *testing.T) {
	storetest.Run(t, openTempStore(t))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eca.db")
	s, err := Open(path)
	require.NoError(t, err)
	run := store.RunRecord{RunID: "run_reopen", Config: store.RunConfig{Rule: 30, Size: 3}}
	require.NoError(t, s.SaveRun(context.Background(), run))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LoadRun(context.Background(), "run_reopen")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Config.Rule)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ")
	assert.ErrorIs(t, err, errs.ErrInvalidParameter)
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := openTempStore(t)
	require.NoError(t, s.Close())
	_, err := s.LoadRun(context.Background(), "run_x")
	assert.ErrorIs(t, err, errs.ErrCollaboratorUnavailable)
}
