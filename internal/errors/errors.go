// internal/errors/errors.go
package appErrors

import "fmt"

// ValidationError reports a caller-fixable request problem. No sends
// and no writes happen when one is returned.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Helper constructor
func NewValidation(field, reason string) error {
    return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError means a lookup by id matched nothing.
type NotFoundError struct {
    ID string
}

func (e *NotFoundError) Error() string {
    return fmt.Sprintf("bulk mail with ID %s not found", e.ID)
}

func NewNotFound(id string) error {
    return &NotFoundError{ID: id}
}

// PersistenceError wraps a failed store read or write. For the send
// path, emails already delivered are not rolled back when one occurs.
type PersistenceError struct {
    Op  string
    Err error
}

func (e *PersistenceError) Error() string {
    return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistence(op string, err error) error {
    return &PersistenceError{Op: op, Err: err}
}
