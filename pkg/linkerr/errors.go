// Package linkerr defines the error taxonomy shared by the clearance engine.
//
// Every failure returned by the core packages is a *Error carrying one of the
// Kind values below, so callers can branch with errors.Is against the
// exported sentinels without inspecting messages.
package linkerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	// InputValidation covers non-finite or out-of-range coordinates,
	// heights and frequencies.
	InputValidation Kind = iota + 1
	// InsufficientData means elevation or height data needed to answer a
	// query is missing.
	InsufficientData
	// GeometryDegenerate means the path has zero length.
	GeometryDegenerate
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case InputValidation:
		return "InputValidationError"
	case InsufficientData:
		return "InsufficientDataError"
	case GeometryDegenerate:
		return "GeometryDegenerateError"
	default:
		return "UnknownError"
	}
}

// Error is a typed engine failure.
type Error struct {
	Kind    Kind   // Failure class
	Field   string // Offending input, if any (e.g. "frequency_ghz")
	Message string // Human readable detail

	// frequency marks the InvalidFrequencyError refinement of InputValidation.
	frequency bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches sentinels by kind. ErrInvalidFrequency only matches frequency
// failures, while ErrInputValidation matches all validation failures.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	// Only the message-less sentinels match by kind.
	if t.Kind != e.Kind || t.Message != "" || t.Field != "" {
		return false
	}
	if t.frequency {
		return e.frequency
	}
	return true
}

// Sentinels for errors.Is.
var (
	ErrInputValidation    = &Error{Kind: InputValidation}
	ErrInsufficientData   = &Error{Kind: InsufficientData}
	ErrGeometryDegenerate = &Error{Kind: GeometryDegenerate}
	ErrInvalidFrequency   = &Error{Kind: InputValidation, frequency: true}
)

// Invalid returns an InputValidationError for field.
func Invalid(field, format string, args ...any) *Error {
	return &Error{Kind: InputValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidFrequency returns the InvalidFrequencyError refinement.
func InvalidFrequency(ghz float64) *Error {
	return &Error{
		Kind:      InputValidation,
		Field:     "frequency_ghz",
		Message:   fmt.Sprintf("frequency must be a positive finite value, got %g", ghz),
		frequency: true,
	}
}

// Insufficient returns an InsufficientDataError.
func Insufficient(field, format string, args ...any) *Error {
	return &Error{Kind: InsufficientData, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Degenerate returns a GeometryDegenerateError.
func Degenerate(format string, args ...any) *Error {
	return &Error{Kind: GeometryDegenerate, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or 0 when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
