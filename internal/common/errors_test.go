package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationSentinels_MatchParent(t *testing.T) {
	for _, err := range []error{
		ErrDeviceUnavailable, ErrTimeConflict, ErrInvalidInterval,
		ErrDurationExceeded, ErrEmailExists,
	} {
		assert.ErrorIs(t, err, ErrorValidation)
		assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrorValidation)
	}
	assert.False(t, errors.Is(ErrStoreUnavailable, ErrorValidation))
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrTimeConflict, "time_conflict"},
		{fmt.Errorf("booking 4: %w", ErrDeviceUnavailable), "device_unavailable"},
		{ErrEmailExists, "email_exists"},
		{ErrInvalidInterval, "invalid_interval"},
		{ErrDurationExceeded, "duration_exceeded"},
		{ErrStoreUnavailable, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err))
	}
}
