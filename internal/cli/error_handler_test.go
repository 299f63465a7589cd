package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"clockin/internal/errors"
	"clockin/internal/validation"
)

func TestErrorHandler_Handle(t *testing.T) {
	eh := NewErrorHandler()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "field validation errors use their message",
			err: func() error {
				ve := validation.NewValidationError()
				ve.AddRequiredError("email")
				return ve
			}(),
			want: "failed to clock in: email is required",
		},
		{
			name: "persistence errors use the friendly message",
			err:  errors.NewPersistenceError(testOwner, fmt.Errorf("connection refused")),
			want: "failed to clock in: Your check-out could not be saved. Please check in and out again.",
		},
		{
			name: "plain errors are wrapped",
			err:  fmt.Errorf("boom"),
			want: "failed to clock in: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eh.Handle("clock in", tt.err).Error())
		})
	}
}

func TestErrorHandler_Classification(t *testing.T) {
	eh := NewErrorHandler()

	assert.True(t, eh.IsInvalidStateError(errors.NewInvalidStateError("check in", "already clocked in")))
	assert.True(t, eh.IsPersistenceError(errors.NewPersistenceError(testOwner, nil)))
	assert.True(t, eh.IsFetchError(errors.NewFetchError(testOwner, nil)))
	assert.True(t, eh.IsValidationError(errors.NewValidationError("bad", nil)))
	assert.False(t, eh.IsValidationError(fmt.Errorf("bad")))
	assert.Equal(t, "UNKNOWN_ERROR", eh.GetErrorCode(fmt.Errorf("bad")))
	assert.Equal(t, "check out failed", eh.HandleSimple(fmt.Errorf("check out failed")).Error())
}
