package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"clockin/internal/errors"
)

// ExportOptions are the flags of the export command
type ExportOptions struct {
	RangeOptions
	Format string
	Output string
}

// ExportCommand handles the export command
type ExportCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	var opts ExportOptions
	fs := newFlagSet("export")
	opts.BindFlags(fs)
	fs.StringVar(&opts.Format, "format", "", "Export format: csv or json")
	fs.StringVarP(&opts.Output, "output", "o", "", "Write to this file instead of stdout")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	return c.Run(ctx, opts)
}

// Run writes the selected entries in a machine-readable format
func (c *ExportCommand) Run(ctx context.Context, opts ExportOptions) error {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = c.app.config.Commands.OutputDefaultFormat
	}
	if format != "csv" && format != "json" {
		return errors.NewInvalidInputError("format", opts.Format, "supported formats: csv, json")
	}

	report, err := loadReport(ctx, c.app, opts.RangeOptions)
	if err != nil {
		return c.errorHandler.Handle("export history", err)
	}

	var w io.Writer = c.app.out
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return c.errorHandler.Handle("export history", errors.NewStorageError("create "+opts.Output, err))
		}
		defer f.Close()
		w = f
	}

	if format == "json" {
		err = writeEntriesJSON(w, report)
	} else {
		err = writeEntriesCSV(w, report, c.app)
	}
	if err != nil {
		return c.errorHandler.Handle("export history", err)
	}
	if opts.Output != "" {
		c.app.printf("Exported %s to %s\n", pluralEntries(report.Summary.Count), opts.Output)
	}
	return nil
}
