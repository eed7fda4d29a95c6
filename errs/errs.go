// Package errs defines the error taxonomy shared across the TPE engine.
//
// Errors are constructed with New and carry a Kind that callers can test
// with Is, following the sentinel-error convention gonum itself uses in
// its optimize package tests (plain errors.New values compared with ==
// or errors.Is), generalized here with a small Kind enum so that every
// package in this module reports failures the same way.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the engine's failure categories.
type Kind int

const (
	// InvalidArgument marks malformed hyperparameters: low >= high,
	// negative sigma, a negative input to lognormal_cdf.
	InvalidArgument Kind = iota
	// Unsupported marks a request the engine deliberately refuses:
	// multi-point suggestion, an unknown distribution family.
	Unsupported
	// Degenerate marks a numerical routine that could not produce a
	// usable answer within its budget: truncated rejection sampling
	// exceeding its attempt budget, an optimizer escaping its bounds.
	Degenerate
	// DataCorruption marks inconsistent input data: duplicate tids.
	DataCorruption
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case Unsupported:
		return "Unsupported"
	case Degenerate:
		return "Degenerate"
	case DataCorruption:
		return "DataCorruption"
	default:
		return "Unknown"
	}
}

// Error is a Kind-tagged error. Two Errors compare equal under errors.Is
// when their Kinds match, regardless of message.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, errs.New(errs.Degenerate, "")) works as a Kind test.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds an Error of the given Kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given Kind that wraps an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
