package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure so callers can branch on it without
// matching error strings.
type Code string

const (
	// CodeInvalidArgument marks a parameter outside the supported domain
	// (for example a bit-length below 2). No work is performed.
	CodeInvalidArgument Code = "invalid_argument"

	// CodeInvalidInput marks malformed or degenerate input data, such as an
	// unparsable results file or a sample too small to analyze.
	CodeInvalidInput Code = "invalid_input"

	// CodeResourceExhausted marks a bounded search that ran out of attempts.
	CodeResourceExhausted Code = "resource_exhausted"

	// CodeInvariantViolation marks a broken domain invariant, e.g. a record
	// whose value fails independent primality verification.
	CodeInvariantViolation Code = "invariant_violation"

	CodeNotFound Code = "not_found"
	CodeTimeout  Code = "timeout"
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It optionally wraps the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error without an underlying cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is reports whether the outermost domain error in err's chain has code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the outermost domain code, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
