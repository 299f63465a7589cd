package cli

import (
	"context"

	"clockin/internal/cli/formatter"
)

// SummaryCommand handles the summary command
type SummaryCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSummaryCommand creates a new summary command handler
func NewSummaryCommand(app *App) *SummaryCommand {
	return &SummaryCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the summary command
func (c *SummaryCommand) Execute(ctx context.Context, args []string) error {
	var opts RangeOptions
	fs := newFlagSet("summary")
	opts.BindFlags(fs)
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	return c.Run(ctx, opts)
}

// Run prints worked time per day and the grand total
func (c *SummaryCommand) Run(ctx context.Context, opts RangeOptions) error {
	report, err := loadReport(ctx, c.app, opts)
	if err != nil {
		return c.errorHandler.Handle("summarize history", err)
	}
	if report.Summary.Count == 0 {
		c.app.printf("No time entries found\n")
		return nil
	}

	c.app.printf("%s\n\n", formatter.Header("Summary"))
	footer := []string{"Total", "", "", report.Summary.FormattedTotal}
	c.app.printf("%s", formatter.RenderTableWithFooter(formatter.DailyHeaders, formatter.DailyRows(report.Daily), footer))
	c.app.printf("\n%s across %d days\n", formatter.Dim(pluralEntries(report.Summary.Count)), len(report.Daily))
	return nil
}
