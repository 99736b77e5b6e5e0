// Package services provides the business logic layer between the HTTP API
// and the engine/persistence.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrGraphNameRequired = errors.New("graph name is required")
	ErrNodesRequired     = errors.New("graph must have at least one node")
	ErrGraphNil          = errors.New("graph cannot be nil")
	ErrExecutionRejected = errors.New("graph failed validation")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrGraphNameRequired) ||
		errors.Is(err, ErrNodesRequired) ||
		errors.Is(err, ErrGraphNil) ||
		errors.Is(err, ErrExecutionRejected)
}
