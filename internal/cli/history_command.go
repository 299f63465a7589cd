package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"clockin/internal/cli/formatter"
	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/services"
)

// RangeOptions select the dates a report covers
type RangeOptions struct {
	From  string
	To    string
	Since string
}

// BindFlags registers --from, --to and --since on fs
func (o *RangeOptions) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.From, "from", "", "First day to include (YYYY-MM-DD)")
	fs.StringVar(&o.To, "to", "", "Last day to include (YYYY-MM-DD, whole day)")
	fs.StringVar(&o.Since, "since", "", "Shorthand window ending now: 30m, 2h, 1d, 2w, 3mo, 1y")
}

// HistoryOptions are the flags of the history command
type HistoryOptions struct {
	RangeOptions
	Format string
}

// HistoryCommand handles the history command
type HistoryCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewHistoryCommand creates a new history command handler
func NewHistoryCommand(app *App) *HistoryCommand {
	return &HistoryCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the history command
func (c *HistoryCommand) Execute(ctx context.Context, args []string) error {
	var opts HistoryOptions
	fs := newFlagSet("history")
	opts.BindFlags(fs)
	fs.StringVar(&opts.Format, "format", "", "Output format: table, csv or json")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	return c.Run(ctx, opts)
}

// Run prints the owner's entries within the selected range
func (c *HistoryCommand) Run(ctx context.Context, opts HistoryOptions) error {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = c.app.config.Commands.HistoryDefaultFormat
	}
	if format != "table" && format != "csv" && format != "json" {
		return errors.NewInvalidInputError("format", opts.Format, "supported formats: table, csv, json")
	}

	report, err := loadReport(ctx, c.app, opts.RangeOptions)
	if err != nil {
		return c.errorHandler.Handle("load history", err)
	}

	switch format {
	case "csv":
		return writeEntriesCSV(c.app.out, report, c.app)
	case "json":
		return writeEntriesJSON(c.app.out, report)
	}

	if report.Summary.Count == 0 {
		c.app.printf("No time entries found\n")
		return nil
	}
	c.app.printf("%s\n\n", formatter.Header("History"))
	c.app.printf("%s", formatter.HistoryTable(report.Summary, c.app.config.Time.TimeFormat, c.app.location))
	c.app.printf("\n%s\n", formatter.Dim(pluralEntries(report.Summary.Count)))
	return nil
}

// loadReport resolves the range and fetches the report. A stale report is
// treated as a failure since a fresh process has nothing cached to show.
func loadReport(ctx context.Context, app *App, opts RangeOptions) (*services.HistoryReport, error) {
	rng, err := app.businessAPI.ParseTimeRange(ctx, opts.From, opts.To, opts.Since)
	if err != nil {
		return nil, err
	}
	report, err := app.businessAPI.GetHistory(ctx, rng)
	if err != nil {
		if report != nil && report.Stale && report.Summary.Count > 0 {
			app.warnf("showing cached history: %s\n", errors.GetUserMessage(err))
			return report, nil
		}
		return nil, err
	}
	return report, nil
}

func writeEntriesCSV(w io.Writer, report *services.HistoryReport, app *App) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(formatter.EntryHeaders); err != nil {
		return err
	}
	rows := formatter.EntryRows(report.Summary.Entries, app.config.Time.TimeFormat, app.location)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	if report.Summary.Range != nil {
		if err := cw.Write(formatter.TotalRow(report.Summary)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type historyJSON struct {
	Entries   []*domain.TimeEntry `json:"entries"`
	Count     int                 `json:"count"`
	TotalTime string              `json:"totalTime"`
}

func writeEntriesJSON(w io.Writer, report *services.HistoryReport) error {
	entries := report.Summary.Entries
	if entries == nil {
		entries = []*domain.TimeEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(historyJSON{
		Entries:   entries,
		Count:     report.Summary.Count,
		TotalTime: report.Summary.FormattedTotal,
	})
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return strconv.Itoa(n) + " entries"
}
