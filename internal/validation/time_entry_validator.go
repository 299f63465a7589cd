package validation

import (
	"clockin/internal/config"
	"clockin/internal/domain"
)

// TimeEntryValidator checks owners, closed entries and date ranges
type TimeEntryValidator struct {
	validator *Validator
}

// NewTimeEntryValidator creates a new time entry validator
func NewTimeEntryValidator() *TimeEntryValidator {
	return &TimeEntryValidator{validator: NewValidator()}
}

// NewTimeEntryValidatorWithConfig uses the limits from cfg
func NewTimeEntryValidatorWithConfig(cfg *config.Config) *TimeEntryValidator {
	return &TimeEntryValidator{validator: NewValidatorWithConfig(cfg)}
}

// ValidateOwner validates the owner identifier
func (tev *TimeEntryValidator) ValidateOwner(owner string) error {
	validationError := NewValidationError()
	tev.checkOwner(validationError, owner)
	return validationError.ErrOrNil()
}

// ValidateTimeEntryForCreation validates a closed entry before it is stored
func (tev *TimeEntryValidator) ValidateTimeEntryForCreation(entry *domain.TimeEntry) error {
	validationError := NewValidationError()
	if entry == nil {
		validationError.AddRequiredError("time entry")
		return validationError.ErrOrNil()
	}

	tev.checkOwner(validationError, entry.Owner)

	if entry.CheckIn.IsZero() {
		validationError.AddRequiredError("checkIn")
	} else if !tev.validator.IsReasonableDate(entry.CheckIn) {
		validationError.AddInvalidValueError("checkIn", entry.CheckIn, "must be within reasonable date range")
	}

	switch {
	case entry.CheckOut == nil:
		validationError.AddRequiredError("checkOut")
	case !tev.validator.IsValidTimeRange(entry.CheckIn, entry.CheckOut):
		validationError.AddInvalidRangeError("checkOut", *entry.CheckOut, "must be after checkIn")
	}

	return validationError.ErrOrNil()
}

// IsUnusuallyLong reports closed entries longer than the configured maximum.
func (tev *TimeEntryValidator) IsUnusuallyLong(entry *domain.TimeEntry) bool {
	return entry != nil && tev.validator.ExceedsMaxDuration(entry.Duration())
}

// ValidateDateRange validates an optional history range
func (tev *TimeEntryValidator) ValidateDateRange(rng *domain.DateRange) error {
	if rng == nil {
		return nil
	}
	validationError := NewValidationError()
	if !rng.IsValid() {
		validationError.AddInvalidRangeError("range", map[string]interface{}{
			"start": rng.Start,
			"end":   rng.End,
		}, "end date must be on or after start date")
	}
	return validationError.ErrOrNil()
}

func (tev *TimeEntryValidator) checkOwner(validationError *ValidationError, owner string) {
	switch {
	case !tev.validator.IsNonEmptyString(owner):
		validationError.AddRequiredError("email")
	case !tev.validator.IsValidOwner(owner):
		validationError.AddInvalidFormatError("email", owner, "no spaces or control characters")
	case !tev.validator.IsValidOwnerLength(owner):
		validationError.AddInvalidLengthError("email", owner, tev.validator.getOwnerMaxLength())
	}
}
