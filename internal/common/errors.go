// Package common defines sentinel errors and error types shared by the
// account store, the services and the transport adapter. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrNoRowsAffected = errors.New("no rows affected")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorConflict        = errors.New("login already exists")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorAccountDisabled = errors.New("account disabled")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// PersistenceError reports a failed write against the account store: either
// the engine rejected the statement or it affected zero rows.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ValidationError carries field-level problems with caller input.
// Fields maps a field name to its message.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
