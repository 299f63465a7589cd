package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"clockin/internal/api"
	"clockin/internal/config"
	"clockin/internal/domain"
)

// FeedFunc opens a live feed of entries created elsewhere for the owner.
type FeedFunc func(ctx context.Context) (<-chan *domain.TimeEntry, error)

// App represents the main CLI application
type App struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	registry    *CommandRegistry

	out      io.Writer
	errOut   io.Writer
	location *time.Location

	// IsInteractive reports whether stdin is a terminal
	IsInteractive func() bool
	// Feed is set when the store can push new entries
	Feed FeedFunc
}

// NewApp creates a new CLI application instance with default configuration
func NewApp(businessAPI api.BusinessAPI) *App {
	return NewAppWithConfig(businessAPI, config.NewConfig())
}

// NewAppWithConfig creates a new CLI application instance with dependency injection
func NewAppWithConfig(businessAPI api.BusinessAPI, cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{
		businessAPI:   businessAPI,
		config:        cfg,
		out:           os.Stdout,
		errOut:        os.Stderr,
		location:      time.Local,
		IsInteractive: func() bool { return false },
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// SetOutput redirects normal and error output
func (a *App) SetOutput(out, errOut io.Writer) {
	if out != nil {
		a.out = out
	}
	if errOut != nil {
		a.errOut = errOut
	}
}

// SetLocation sets the zone clock times are shown in
func (a *App) SetLocation(loc *time.Location) {
	if loc != nil {
		a.location = loc
	}
}

// Run executes the CLI application with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%s", a.registry.GetUsage())
	}
	return a.registry.Execute(ctx, args[0], args[1:])
}

// formatClock renders t as a wall-clock time, e.g. "03:04 PM"
func (a *App) formatClock(t time.Time) string {
	return t.In(a.location).Format(a.config.Time.TimeFormat)
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) warnf(format string, args ...interface{}) {
	fmt.Fprintf(a.errOut, "Warning: "+format, args...)
}
