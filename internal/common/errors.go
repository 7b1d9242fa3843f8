// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is / errors.As to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorForbidden  = errors.New("forbidden")
	ErrorValidation = errors.New("validation error")

	// Availability errors. A rejected contact attempt wraps one of these
	// inside a BlockedError.
	ErrBlockedBySchedule = errors.New("blocked by schedule")
	ErrBlockedByCapacity = errors.New("blocked by capacity")

	// Write-time validation of availability settings.
	ErrInvalidOpenDate = errors.New("open date must be tomorrow or later")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// BlockedError is a client-visible rejection of a contact attempt. Reason is
// the human readable text shown to the sender; Kind is ErrBlockedBySchedule or
// ErrBlockedByCapacity.
type BlockedError struct {
	Kind   error
	Reason string
}

func (e *BlockedError) Error() string {
	return e.Reason
}

func (e *BlockedError) Unwrap() error {
	return e.Kind
}

// NewScheduleBlock returns a BlockedError for the date and time based modes.
func NewScheduleBlock(reason string) error {
	return &BlockedError{Kind: ErrBlockedBySchedule, Reason: reason}
}

// NewCapacityBlock returns a BlockedError for the capacity-limited mode.
func NewCapacityBlock(reason string) error {
	return &BlockedError{Kind: ErrBlockedByCapacity, Reason: reason}
}
