package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Lattice and statistics errors
	ErrPreconditionViolation = errors.New("precondition violation")
	ErrReferenceModels       = fmt.Errorf("%w: reference models have not been built", ErrPreconditionViolation)
	ErrIndexOutOfRange       = errors.New("index out of range")
	ErrMissingFitTable       = errors.New("missing fit table")
	ErrNotApplicable         = errors.New("statistic not applicable")
	ErrUnknownAttribute      = errors.New("unknown attribute")

	// Input errors
	ErrInvalidModelName   = errors.New("invalid model name")
	ErrInvalidData        = errors.New("invalid data")
	ErrStateSpaceTooLarge = errors.New("state space too large")
	ErrUnknownOption      = errors.New("unknown option")
)

// Error constructors with context
func NewIndexError(index, length int) error {
	return fmt.Errorf("%w: relation index %d, model has %d relations", ErrIndexOutOfRange, index, length)
}

func NewUnknownAttributeError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

func NewModelNameError(name string, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidModelName, name, reason)
}

func NewDataError(line int, reason string) error {
	if line > 0 {
		return fmt.Errorf("%w at line %d: %s", ErrInvalidData, line, reason)
	}
	return fmt.Errorf("%w: %s", ErrInvalidData, reason)
}

func NewNotApplicableError(statistic string) error {
	return fmt.Errorf("%w: %s requires a directed system", ErrNotApplicable, statistic)
}

// Error checking helpers
func IsPreconditionViolation(err error) bool {
	return errors.Is(err, ErrPreconditionViolation)
}

func IsNotApplicable(err error) bool {
	return errors.Is(err, ErrNotApplicable)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidModelName) ||
		errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrUnknownOption)
}

func IsModelError(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrMissingFitTable) ||
		errors.Is(err, ErrStateSpaceTooLarge)
}
