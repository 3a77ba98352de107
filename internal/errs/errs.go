// Package errs defines the error kinds shared by the automaton core and its
// collaborators. Every kind is a local, recoverable condition: callers match
// them with errors.Is against the sentinels or errors.As against the types.
package errs

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below.
var (
	ErrInvalidParameter        = errors.New("invalid parameter")
	ErrUnknownRule             = errors.New("unknown rule")
	ErrRenderCacheState        = errors.New("raster not rendered")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// InvalidParameterError reports a configuration value rejected before any
// generation is computed.
type InvalidParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidParameter) hold.
func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// Invalid is shorthand for building an InvalidParameterError.
func Invalid(field string, value any, reason string) error {
	return &InvalidParameterError{Field: field, Value: value, Reason: reason}
}

// UnknownRuleError reports a rule id without a registered transition function.
type UnknownRuleError struct {
	ID int
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown rule %d", e.ID)
}

func (e *UnknownRuleError) Is(target error) bool { return target == ErrUnknownRule }

// RenderCacheStateError reports a transform requested before evolution
// produced a raster to render.
type RenderCacheStateError struct {
	Op string
}

func (e *RenderCacheStateError) Error() string {
	return fmt.Sprintf("%s requested before a raster was produced", e.Op)
}

func (e *RenderCacheStateError) Is(target error) bool { return target == ErrRenderCacheState }

// CollaboratorUnavailableError wraps a failure of an external collaborator
// (morphology backend, persistence store, image codec).
type CollaboratorUnavailableError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable during %s", e.Collaborator, e.Op)
	}
	return fmt.Sprintf("%s unavailable during %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorUnavailableError) Unwrap() error { return e.Err }

func (e *CollaboratorUnavailableError) Is(target error) bool {
	return target == ErrCollaboratorUnavailable
}

// Unavailable wraps err as a CollaboratorUnavailableError. A nil err stays nil.
func Unavailable(collaborator, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *CollaboratorUnavailableError
	if errors.As(err, &existing) {
		return err
	}
	return &CollaboratorUnavailableError{Collaborator: collaborator, Op: op, Err: err}
}

// IsRecoverable reports whether err is one of the kinds a caller can fix and
// retry.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrUnknownRule) ||
		errors.Is(err, ErrRenderCacheState) ||
		errors.Is(err, ErrCollaboratorUnavailable)
}
