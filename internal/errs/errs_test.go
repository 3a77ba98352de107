package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{Invalid("size", 0, "must be positive"), ErrInvalidParameter},
		{&UnknownRuleError{ID: 7}, ErrUnknownRule},
		{&RenderCacheStateError{Op: "dilate"}, ErrRenderCacheState},
		{Unavailable("sqlite", "save run", errors.New("refused")), ErrCollaboratorUnavailable},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.sentinel)
		assert.True(t, IsRecoverable(wrapped))
	}
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("badger", "open", cause)
	require.ErrorIs(t, err, cause)

	var cu *CollaboratorUnavailableError
	require.ErrorAs(t, err, &cu)
	assert.Equal(t, "badger", cu.Collaborator)

	assert.Same(t, err, Unavailable("other", "op", err), "already wrapped errors pass through")
	assert.NoError(t, Unavailable("x", "y", nil))
}

func TestUnknownRuleMessage(t *testing.T) {
	assert.Equal(t, "unknown rule 42", (&UnknownRuleError{ID: 42}).Error())
}
