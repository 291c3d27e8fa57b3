package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of every input and invariant failure raised by this package.
var ErrValidation = errors.New("validation failed")

// ErrInvalidID and related errors describe specific validation failures.
var (
	ErrInvalidID       = fmt.Errorf("%w: invalid id", ErrValidation)
	ErrInvalidTitle    = fmt.Errorf("%w: title is required", ErrValidation)
	ErrInvalidName     = fmt.Errorf("%w: column title is required", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrInvalidPosition = fmt.Errorf("%w: invalid position", ErrValidation)
	ErrImmutableField  = fmt.Errorf("%w: field is immutable", ErrValidation)
	ErrBrokenPartition = fmt.Errorf("%w: column partition mismatch", ErrValidation)
)
