// Package apperrors defines the error taxonomy shared by the repositories,
// services, and HTTP handlers. Repositories and services return these
// sentinels (usually wrapped with context); handlers map them to 4xx
// responses at the request boundary.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing users, connections, journals, and locations.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers duplicate writes, e.g. a second connection request
	// for a pair that already has a record.
	ErrConflict = errors.New("conflict")
	// ErrForbidden covers authorization failures: the acting user is not a
	// party to the connection, not the recipient of the request, or not
	// connected to the content owner.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation covers malformed actions and missing fields that survive
	// request-body validation.
	ErrValidation = errors.New("validation failed")
)

// ConnectionExistsError is a ConflictError that carries the status of the
// existing connection, so the requester is told what already stands between
// the two users.
type ConnectionExistsError struct {
	Status string
}

func (e *ConnectionExistsError) Error() string {
	return fmt.Sprintf("connection already exists with status %q", e.Status)
}

func (e *ConnectionExistsError) Unwrap() error { return ErrConflict }
