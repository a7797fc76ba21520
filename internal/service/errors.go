package service

import "fmt"

// ValidationError marks input the caller can fix: a missing required field,
// an unknown enum value or a malformed date. Field names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError marks an identifier collision: a duplicate create inside one
// batch or against an already stored test case. The whole batch is rejected.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// CapacityError is returned when every run slot is already bound to another
// date.
type CapacityError struct {
	Message string
}

func (e *CapacityError) Error() string {
	return e.Message
}

func NewCapacityError(format string, args ...any) *CapacityError {
	return &CapacityError{Message: fmt.Sprintf(format, args...)}
}

// PreconditionError marks an operation attempted in a state that does not
// allow it, such as stopping a regression without outcomes for every test
// case.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

func NewPreconditionError(format string, args ...any) *PreconditionError {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}
