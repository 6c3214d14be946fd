// Package apperror defines the closed set of failure kinds the CLI reports.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnexpected covers anything not classified below.
	KindUnexpected Kind = iota
	// KindFile is an input file that is missing or unreadable.
	KindFile
	// KindParse is input that is not valid JSON.
	KindParse
	// KindValidation is well-formed input that cannot be processed
	// (empty batch, missing record fields, index out of range).
	KindValidation
	// KindBackend is a failure of the inference service.
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	case KindBackend:
		return "backend"
	default:
		return "unexpected"
	}
}

// Error is a classified failure. Message is the human-readable payload;
// Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given kind without a cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind wrapping err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
// Errors that carry no classification are KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
