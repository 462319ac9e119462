package wizard

import (
	"errors"
	"fmt"
)

// Error kinds reported to the rendering layer.
const (
	KindValidation   = "validation"
	KindCapacity     = "capacity"
	KindCollaborator = "collaborator"
)

// ValidationError is returned when a required wizard selection is missing or out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// CapacityError is returned when the month cannot take the requested players.
type CapacityError struct {
	Month     string
	Available int
	Requested int
}

func (e *CapacityError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("no slots left for %s", e.Month)
	}
	return fmt.Sprintf("only %d slots left for %s, %d requested", e.Available, e.Month, e.Requested)
}

// CollaboratorError wraps a failure reported by the booking store.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Kind classifies err as one of the wizard error kinds, or "" for anything else.
func Kind(err error) string {
	var ve *ValidationError
	var ce *CapacityError
	var co *CollaboratorError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ce):
		return KindCapacity
	case errors.As(err, &co):
		return KindCollaborator
	}
	return ""
}

func typeRequired() error {
	return &ValidationError{Field: "packageType", Reason: "type required"}
}
