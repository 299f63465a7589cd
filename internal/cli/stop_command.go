package cli

import (
	"context"

	"clockin/internal/errors"
)

// StopCommand handles the stop command
type StopCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the stop command. It waits for the store to answer so the
// process does not exit before the entry is recorded.
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return errors.NewInvalidInputError("command", "stop", "usage: clockin stop")
	}

	result, err := c.app.businessAPI.CheckOut(ctx)
	if err != nil {
		if c.errorHandler.IsInvalidStateError(err) {
			c.app.printf("Not clocked in\n")
			return nil
		}
		return c.errorHandler.Handle("clock out", err)
	}

	entry := result.Entry
	c.app.printf("Clocked out at %s\n", c.app.formatClock(*entry.CheckOut))
	c.app.printf("Worked: %s\n", entry.TotalTime)

	if result.Warning != nil {
		c.app.warnf("session state could not be cleared: %s\n", errors.GetUserMessage(result.Warning))
	}

	if err := result.Checkout.Wait(ctx); err != nil {
		return c.errorHandler.Handle("record check-out", err)
	}
	return nil
}
