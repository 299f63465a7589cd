package validation

import (
	"strings"
	"time"
	"unicode"

	"clockin/internal/config"
)

const (
	defaultOwnerMaxLength = 254
	defaultMaxDuration    = 24 * time.Hour
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator using default limits
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidOwnerLength checks the owner against the configured maximum
func (v *Validator) IsValidOwnerLength(owner string) bool {
	return len(owner) <= v.getOwnerMaxLength()
}

// IsValidOwner rejects whitespace and control characters anywhere in the owner
func (v *Validator) IsValidOwner(owner string) bool {
	for _, r := range owner {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return owner != ""
}

// IsValidTimeRange checks if start time is before end time
func (v *Validator) IsValidTimeRange(startTime time.Time, endTime *time.Time) bool {
	if endTime == nil {
		return false
	}
	return startTime.Before(*endTime)
}

// IsValidDuration checks if a duration is positive
func (v *Validator) IsValidDuration(duration time.Duration) bool {
	return duration > 0
}

// ExceedsMaxDuration reports intervals longer than the configured limit.
// Such intervals are still accepted; callers only flag them.
func (v *Validator) ExceedsMaxDuration(duration time.Duration) bool {
	return duration > v.getMaxDuration()
}

// IsReasonableDate checks if a date is within reasonable bounds
func (v *Validator) IsReasonableDate(t time.Time) bool {
	now := time.Now()
	// ten years back, one year ahead
	tenYearsAgo := now.AddDate(-10, 0, 0)
	oneYearFromNow := now.AddDate(1, 0, 0)

	return t.After(tenYearsAgo) && t.Before(oneYearFromNow)
}

// MaxDuration returns the longest interval not flagged as unusual
func (v *Validator) MaxDuration() time.Duration {
	return v.getMaxDuration()
}

func (v *Validator) getOwnerMaxLength() int {
	if v.config != nil && v.config.Validation.OwnerMaxLength > 0 {
		return v.config.Validation.OwnerMaxLength
	}
	return defaultOwnerMaxLength
}

func (v *Validator) getMaxDuration() time.Duration {
	if v.config != nil && v.config.Validation.MaxDuration > 0 {
		return v.config.Validation.MaxDuration
	}
	return defaultMaxDuration
}
