package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clockin/internal/config"
)

func TestValidator_IsValidOwner(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		owner string
		valid bool
	}{
		{"jane@example.com", true},
		{"employee-42", true},
		{"", false},
		{"jane doe", false},
		{"jane\t@example.com", false},
		{"jane\x00", false},
	}

	for _, tt := range tests {
		t.Run(tt.owner, func(t *testing.T) {
			assert.Equal(t, tt.valid, v.IsValidOwner(tt.owner))
		})
	}
}

func TestValidator_OwnerLengthUsesConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.OwnerMaxLength = 5

	assert.True(t, NewValidator().IsValidOwnerLength(strings.Repeat("a", 254)))
	assert.False(t, NewValidator().IsValidOwnerLength(strings.Repeat("a", 255)))
	assert.True(t, NewValidatorWithConfig(cfg).IsValidOwnerLength("abcde"))
	assert.False(t, NewValidatorWithConfig(cfg).IsValidOwnerLength("abcdef"))
}

func TestValidator_IsValidDuration(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.MaxDuration = 12 * time.Hour
	v := NewValidatorWithConfig(cfg)

	assert.False(t, v.IsValidDuration(0))
	assert.False(t, v.IsValidDuration(-time.Second))
	assert.True(t, v.IsValidDuration(time.Second))
	assert.True(t, v.IsValidDuration(36*time.Hour))

	assert.False(t, v.ExceedsMaxDuration(12*time.Hour))
	assert.True(t, v.ExceedsMaxDuration(12*time.Hour+time.Second))
	assert.Equal(t, 24*time.Hour, NewValidator().MaxDuration())
}

func TestValidator_IsValidTimeRange(t *testing.T) {
	v := NewValidator()
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	later := start.Add(time.Second)

	assert.True(t, v.IsValidTimeRange(start, &later))
	assert.False(t, v.IsValidTimeRange(start, &start))
	assert.False(t, v.IsValidTimeRange(later, &start))
	assert.False(t, v.IsValidTimeRange(start, nil))
}

func TestValidator_IsReasonableDate(t *testing.T) {
	v := NewValidator()

	assert.True(t, v.IsReasonableDate(time.Now()))
	assert.False(t, v.IsReasonableDate(time.Now().AddDate(-11, 0, 0)))
	assert.False(t, v.IsReasonableDate(time.Now().AddDate(2, 0, 0)))
}
