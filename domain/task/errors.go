package task

import (
	"errors"
	"fmt"
	"strings"
)

// MsgNotFound is the user-facing message for a missing task.
const MsgNotFound = "Tarefa não encontrada"

// ErrNotFound is returned when no task matches an id.
var ErrNotFound = errors.New(MsgNotFound)

// ValidationError reports one or more rule violations on task fields.
type ValidationError struct {
	Messages []string
}

// NewValidationError creates a ValidationError from messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// PersistenceError wraps a failure of the backing store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s task: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
