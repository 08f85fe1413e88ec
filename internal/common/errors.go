// Package common defines constants and sentinel errors shared by every layer
// of rackbook. Callers match them with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Access control.
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorForbidden        = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrorValidation is the parent of every rejection the caller can fix by
	// changing the request.
	ErrorValidation = errors.New("validation failed")

	ErrDeviceUnavailable = validationError("device_unavailable")
	ErrTimeConflict      = validationError("time_conflict")
	ErrInvalidInterval   = validationError("invalid_interval")
	ErrDurationExceeded  = validationError("duration_exceeded")
	ErrEmailExists       = validationError("email_exists")

	// Storage.
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrStaleWrite        = errors.New("stale write")
	ErrUnknownCollection = errors.New("unknown collection")
)

// validationError builds a sentinel whose message is the machine readable
// reason and which also matches ErrorValidation.
func validationError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrorValidation)
}

// Reason returns the machine readable part of a validation sentinel
// ("time_conflict"), or "" when err is not one of them.
func Reason(err error) string {
	for _, sentinel := range []error{
		ErrDeviceUnavailable, ErrTimeConflict, ErrInvalidInterval,
		ErrDurationExceeded, ErrEmailExists,
	} {
		if errors.Is(err, sentinel) {
			msg := sentinel.Error()
			return msg[:len(msg)-len(": "+ErrorValidation.Error())]
		}
	}
	return ""
}
