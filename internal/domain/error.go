package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("concurrent modification")

	// User-facing taxonomy
	ErrValidation     = errors.New("validation failed")
	ErrPermission     = errors.New("permission denied")
	ErrContext        = errors.New("command used in the wrong chat context")
	ErrEmptyResult    = errors.New("nothing to show")
	ErrNoChatSelected = errors.New("no chat selected")

	// Delivery outcomes
	ErrPlatformRejected  = errors.New("platform rejected delivery permanently")
	ErrTransientDelivery = errors.New("transient delivery failure")

	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrLockHeld           = errors.New("lock held by another holder")
)

// ValidationError carries a translation key describing what was wrong with user input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation failed: %s", e.Reason) }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(reason string) error { return &ValidationError{Reason: reason} }

// ValidationReason returns the reason key of a ValidationError in err's chain, or "".
func ValidationReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
