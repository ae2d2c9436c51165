// Package synccore implements the causally ordered, CRDT-style operation
// log that lets independent devices edit a shared document offline and
// converge on reunion: vector clocks, typed operations, conflict
// detection, and operational transformation.
package synccore

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed id, path, payload shape, payload
// size, timestamp, or unknown enum value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InvariantError reports a pre-condition failure during state application,
// e.g. deleting a path that does not exist.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant error: %s: %s", e.Op, e.Reason)
}

// NewInvariantError builds an InvariantError for a named operation.
func NewInvariantError(op, reason string) error {
	return &InvariantError{Op: op, Reason: reason}
}

// StateError reports double resolution, an unsupported resolution
// strategy, or an attempt to transform incompatible operations.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error: %s: %s", e.Op, e.Reason)
}

func newStateError(op, reason string) error {
	return &StateError{Op: op, Reason: reason}
}

// SerializationError reports malformed JSON input or a clone failure.
type SerializationError struct {
	Reason string
	Cause  error
}

func (e *SerializationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("serialization error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("serialization error: %s", e.Reason)
}

func (e *SerializationError) Unwrap() error { return e.Cause }

func newSerializationError(reason string, cause error) error {
	return &SerializationError{Reason: reason, Cause: cause}
}

// TimeoutError is surfaced by an orchestration host collaborator (§6) per
// cross-context call; the core never constructs one itself.
type TimeoutError struct {
	Context   string
	TimeoutMs int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout error: context %q exceeded %dms", e.Context, e.TimeoutMs)
}

// NewTimeoutError builds a TimeoutError for a named cross-context call.
func NewTimeoutError(context string, timeoutMs int64) error {
	return &TimeoutError{Context: context, TimeoutMs: timeoutMs}
}

// NewUnknownConflictError reports a lookup against a conflict id that a
// ConflictRepository implementation does not hold.
func NewUnknownConflictError(conflictID string) error {
	return &ValidationError{Field: "conflict.id", Reason: fmt.Sprintf("unknown conflict %q", conflictID)}
}

// As* helpers let callers classify a returned error without importing the
// concrete types directly.

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

func AsInvariantError(err error) (*InvariantError, bool) {
	var ie *InvariantError
	ok := errors.As(err, &ie)
	return ie, ok
}

func AsStateError(err error) (*StateError, bool) {
	var se *StateError
	ok := errors.As(err, &se)
	return se, ok
}

func AsSerializationError(err error) (*SerializationError, bool) {
	var se *SerializationError
	ok := errors.As(err, &se)
	return se, ok
}

func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	ok := errors.As(err, &te)
	return te, ok
}
