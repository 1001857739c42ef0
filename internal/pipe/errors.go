package pipe

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the engine wraps exactly one of them,
// so callers can branch with errors.Is while the message stays stable.
var (
	ErrConfig         = errors.New("configuration error")
	ErrNodeNotFound   = errors.New("node not found")
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrImmutable      = errors.New("immutable attribute")
	ErrInvalidDefault = errors.New("invalid default value")
	ErrPipeNotFound   = errors.New("pipe not found")
)

// Error is an engine error: a kind plus a deterministic message.
type Error struct {
	Kind error
	Msg  string
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ConfigErrorf builds an ErrConfig error. Collaborators validating
// pipeline-level configuration use it to stay in the same taxonomy.
func ConfigErrorf(format string, args ...any) error {
	return newError(ErrConfig, format, args...)
}
