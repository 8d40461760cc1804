package geo

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by the pipeline matches exactly one of them
// through errors.Is.
var (
	ErrMalformedSource       = errors.New("malformed source")
	ErrOutOfDomain           = errors.New("out of projection domain")
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrResourceIO            = errors.New("resource i/o")
	ErrIncompleteFeature     = errors.New("incomplete feature")
	ErrNoMoreElements        = errors.New("no more elements")
)

// Error attaches an error kind and the failing operation to a low-level cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// Wrap builds an *Error. A nil cause is allowed.
func Wrap(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// DomainError reports a coordinate outside the valid input range of a projection.
type DomainError struct {
	X, Y    float64
	Inverse bool
}

func (e *DomainError) Error() string {
	if e.Inverse {
		return fmt.Sprintf("projected position (%f, %f) is outside the projection domain", e.X, e.Y)
	}
	return fmt.Sprintf("invalid coordinate: lon=%f lat=%f (lon must be ±180, lat must be ±90)", e.X, e.Y)
}

// Is matches ErrOutOfDomain.
func (e *DomainError) Is(target error) bool {
	return target == ErrOutOfDomain
}
