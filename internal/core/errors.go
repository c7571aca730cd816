package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by this package matches exactly one of
// them under errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrIO         = errors.New("io error")
	ErrUnknown    = errors.New("unknown error")
)

// ErrEmptyInput is returned by BuildReport for an empty record set.
// It is a programmer error: callers check for records before building.
var ErrEmptyInput = errors.New("report requires at least one record")

// Error is a classified failure with the operation that produced it.
type Error struct {
	Kind error  // One of ErrValidation, ErrNotFound, ErrIO, ErrUnknown
	Op   string // Operation, e.g. "report.generate"
	Msg  string // Message shown to the operator
	Err  error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ValidationError reports missing or malformed operator input.
func ValidationError(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a query that matched nothing.
func NotFoundError(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IOError reports a serialization or filesystem failure.
func IOError(op string, err error, format string, args ...any) error {
	return &Error{Kind: ErrIO, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// UnknownError wraps a failure that carries no kind of its own.
// An error that is already classified is returned unchanged.
func UnknownError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: ErrUnknown, Op: op, Msg: "unexpected error", Err: err}
}

// KindOf returns the kind of err, or ErrUnknown when it is unclassified.
func KindOf(err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrUnknown
}

// OpOf returns the operation recorded on err, or "" when there is none.
func OpOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Op
	}
	return ""
}
