package api

import (
	"context"
	"time"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/history"
	"clockin/internal/repository"
	"clockin/internal/services"
	"clockin/internal/session"
	"clockin/internal/validation"
)

// BusinessAPI defines the workflow surface used by the command line and the TUI
type BusinessAPI interface {
	// ========== Session Workflows ==========

	// Owner returns the identifier entries are recorded under
	Owner() string

	// CheckIn opens a check-in at the current time
	CheckIn(ctx context.Context) (*services.SessionStatus, error)

	// CheckOut closes the open check-in and records it in the background
	CheckOut(ctx context.Context) (*services.CheckoutResult, error)

	// GetStatus returns the current session reading
	GetStatus(ctx context.Context) *services.SessionStatus

	// WatchSession publishes elapsed time until ctx ends or the session stops
	WatchSession(ctx context.Context, interval time.Duration) <-chan session.Tick

	// ========== History ==========

	// ParseTimeRange builds a range from --from/--to dates or a --since shorthand
	ParseTimeRange(ctx context.Context, from, to, since string) (*domain.DateRange, error)

	// GetHistory fetches the owner's entries and summarizes them within rng.
	// On a fetch failure the stale report is returned together with the error.
	GetHistory(ctx context.Context, rng *domain.DateRange) (*services.HistoryReport, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	owner              string
	services           *services.ServiceContainer
	timeEntryValidator *validation.TimeEntryValidator
	clock              session.Clock
	location           *time.Location
}

// Option configures the BusinessAPI
type Option func(*businessAPIImpl)

// WithClock replaces time.Now
func WithClock(clock session.Clock) Option {
	return func(b *businessAPIImpl) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithLocation sets the zone --from and --to dates are read in
func WithLocation(loc *time.Location) Option {
	return func(b *businessAPIImpl) {
		if loc != nil {
			b.location = loc
		}
	}
}

// WithValidator replaces the default entry validator
func WithValidator(v *validation.TimeEntryValidator) Option {
	return func(b *businessAPIImpl) {
		if v != nil {
			b.timeEntryValidator = v
		}
	}
}

// NewBusinessAPI creates a new BusinessAPI instance for sess
func NewBusinessAPI(sess *session.Session, repo repository.TimeEntryRepository, opts ...Option) BusinessAPI {
	b := &businessAPIImpl{
		owner:              sess.Owner(),
		timeEntryValidator: validation.NewTimeEntryValidator(),
		clock:              time.Now,
		location:           time.Local,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.services = services.NewServiceContainer(sess, repo, b.clock)
	return b
}

func (b *businessAPIImpl) Owner() string {
	return b.owner
}

func (b *businessAPIImpl) CheckIn(ctx context.Context) (*services.SessionStatus, error) {
	if err := b.timeEntryValidator.ValidateOwner(b.owner); err != nil {
		return nil, err
	}
	return b.services.AttendanceService.CheckIn(ctx)
}

func (b *businessAPIImpl) CheckOut(ctx context.Context) (*services.CheckoutResult, error) {
	return b.services.AttendanceService.CheckOut(ctx)
}

func (b *businessAPIImpl) GetStatus(ctx context.Context) *services.SessionStatus {
	return b.services.AttendanceService.Status()
}

func (b *businessAPIImpl) WatchSession(ctx context.Context, interval time.Duration) <-chan session.Tick {
	return b.services.AttendanceService.Watch(ctx, interval)
}

func (b *businessAPIImpl) ParseTimeRange(ctx context.Context, from, to, since string) (*domain.DateRange, error) {
	if since != "" {
		if from != "" || to != "" {
			return nil, errors.NewValidationError("use either --since or --from/--to, not both", nil)
		}
		return history.ParseShorthand(since, b.clock().In(b.location))
	}

	rng, err := history.ParseRange(from, to, b.location)
	if err != nil {
		return nil, err
	}
	if err := b.timeEntryValidator.ValidateDateRange(rng); err != nil {
		return nil, err
	}
	return rng, nil
}

func (b *businessAPIImpl) GetHistory(ctx context.Context, rng *domain.DateRange) (*services.HistoryReport, error) {
	if err := b.timeEntryValidator.ValidateOwner(b.owner); err != nil {
		return nil, err
	}
	if err := b.timeEntryValidator.ValidateDateRange(rng); err != nil {
		return nil, err
	}
	return b.services.ReportingService.History(ctx, rng)
}
