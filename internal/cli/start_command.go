package cli

import (
	"context"

	"clockin/internal/errors"
)

// StartCommand handles the start command
type StartCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the start command
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return errors.NewInvalidInputError("command", "start", "usage: clockin start")
	}

	status, err := c.app.businessAPI.CheckIn(ctx)
	if err != nil {
		// Starting twice is a no-op, not a failure.
		if c.errorHandler.IsInvalidStateError(err) && status != nil && status.CheckInTime != nil {
			c.app.printf("Already clocked in since %s (%s)\n", c.app.formatClock(*status.CheckInTime), status.FormattedElapsed)
			return nil
		}
		return c.errorHandler.Handle("clock in", err)
	}

	c.app.printf("%s: %s\n", c.app.config.Display.ClockedInLabel, c.app.formatClock(*status.CheckInTime))
	return nil
}
