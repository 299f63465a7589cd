package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/pflag"

	"clockin/internal/cli/formatter"
	"clockin/internal/history"
	"clockin/internal/services"
)

// StatusOptions are the flags of the status command
type StatusOptions struct {
	Watch    bool
	JSON     bool
	Interval time.Duration
}

// StatusCommand handles the status command
type StatusCommand struct {
	app *App
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{app: app}
}

// BindFlags registers the status flags on fs
func (o *StatusOptions) BindFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.Watch, "watch", "w", false, "Keep printing the elapsed time until clocked out")
	fs.BoolVar(&o.JSON, "json", false, "Print the status as JSON")
	fs.DurationVar(&o.Interval, "interval", 0, "Refresh interval for --watch (default CLOCKIN_TICK_INTERVAL)")
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	var opts StatusOptions
	fs := newFlagSet("status")
	opts.BindFlags(fs)
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	return c.Run(ctx, opts)
}

// Run prints the current session
func (c *StatusCommand) Run(ctx context.Context, opts StatusOptions) error {
	status := c.app.businessAPI.GetStatus(ctx)
	if opts.JSON {
		enc := json.NewEncoder(c.app.out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	c.print(status)
	if !opts.Watch || !status.Active {
		return nil
	}
	return c.follow(ctx, opts.Interval)
}

func (c *StatusCommand) print(status *services.SessionStatus) {
	c.app.printf("%s\n", formatter.StatusIndicator(status.Active))
	if !status.Active {
		return
	}
	c.app.printf("%s: %s\n", c.app.config.Display.ClockedInLabel, c.app.formatClock(*status.CheckInTime))
	c.app.printf("Elapsed: %s\n", status.FormattedElapsed)
}

// follow redraws the elapsed line until ctx ends or the session stops
func (c *StatusCommand) follow(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = c.app.config.Session.TickInterval
	}

	for tick := range c.app.businessAPI.WatchSession(ctx, interval) {
		if !tick.Active {
			c.app.printf("\nClocked out\n")
			return nil
		}
		c.app.printf("\rElapsed: %s", history.FormatElapsed(tick.Elapsed))
	}
	c.app.printf("\n")
	return nil
}
