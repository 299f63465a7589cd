package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/logging"
)

// UICommand runs the full-screen attendance view
type UICommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewUICommand creates a new ui command handler
func NewUICommand(app *App) *UICommand {
	return &UICommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the ui command. ctx should carry no deadline: the view stays
// open until the user quits.
func (c *UICommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return errors.NewInvalidInputError("command", "ui", "usage: clockin ui")
	}
	if c.app.IsInteractive == nil || !c.app.IsInteractive() {
		return errors.NewInvalidStateError("open the attendance view", "stdin is not a terminal")
	}

	// Debug output would corrupt the alternate screen.
	prev := logging.SetDebugOutput(io.Discard)
	defer logging.SetDebugOutput(prev)

	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var feed <-chan *domain.TimeEntry
	if c.app.Feed != nil {
		ch, err := c.app.Feed(viewCtx)
		if err != nil {
			c.app.warnf("live updates unavailable: %v\n", err)
		} else {
			feed = ch
		}
	}

	model := newAttendanceModel(viewCtx, c.app, feed)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(viewCtx))
	_, runErr := p.Run()
	cancel()

	// Writes started in the view finish on their own timeout.
	for _, err := range model.pending.Wait(context.Background()) {
		c.app.warnf("%s\n", errors.GetUserMessage(err))
	}

	if runErr != nil && ctx.Err() == nil {
		return c.errorHandler.Handle("run attendance view", runErr)
	}
	return nil
}
