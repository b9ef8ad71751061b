// Package errs classifies decoder failures so callers can map them to exit
// codes without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the failure class of an Error.
type Kind uint8

const (
	// Internal marks a broken invariant (e.g. zero total likelihood).
	Internal Kind = iota
	// Configuration marks an invalid order, species or cap.
	Configuration
	// ModelParameter marks malformed or shape-mismatched parameter tables.
	ModelParameter
	// InvalidSequence marks an empty input or an unsupported symbol.
	InvalidSequence
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration error"
	case ModelParameter:
		return "model parameter error"
	case InvalidSequence:
		return "invalid sequence"
	default:
		return "internal error"
	}
}

// Error carries a Kind, the operation that failed and the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrConfiguration)
// works regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrConfiguration   = &Error{Kind: Configuration}
	ErrModelParameter  = &Error{Kind: ModelParameter}
	ErrInvalidSequence = &Error{Kind: InvalidSequence}
	ErrInternal        = &Error{Kind: Internal}
)

// New builds an *Error of kind k for operation op.
func New(k Kind, op, format string, a ...any) error {
	return &Error{Kind: k, Op: op, Err: fmt.Errorf(format, a...)}
}

// Wrap attaches kind and op to err. A nil err stays nil.
func Wrap(k Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Op: op, Err: err}
}

// KindOf reports the Kind of the first *Error in err's chain. ok is false
// when err carries no classification.
func KindOf(err error) (k Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return Internal, false
}
