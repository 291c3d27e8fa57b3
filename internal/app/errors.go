package app

import (
	"errors"
	"fmt"

	"github.com/hylla/taskify/internal/domain"
)

// ErrNotFound and related errors describe lookup and routing failures.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownColumn = fmt.Errorf("%w: unknown column", domain.ErrValidation)
)
