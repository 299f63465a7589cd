package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"clockin/internal/api"
	"clockin/internal/config"
	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/logging"
	"clockin/internal/remote"
	"clockin/internal/repository"
	"clockin/internal/server"
	"clockin/internal/session"
	"clockin/internal/validation"
)

// RepositoryOpener opens the time-entry store for a configuration
type RepositoryOpener func(ctx context.Context, cfg *config.Config) (repository.TimeEntryRepository, error)

// StateStoreOpener opens the local session snapshot store
type StateStoreOpener func(cfg *config.Config) (session.StateStore, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	config *config.Config

	out           io.Writer
	errOut        io.Writer
	isInteractive func() bool
	location      *time.Location

	openRepository RepositoryOpener
	openStateStore StateStoreOpener

	repo repository.TimeEntryRepository
	app  *App
}

// RootOption configures the root command
type RootOption func(*RootCommand)

// WithOutput redirects command output
func WithOutput(out, errOut io.Writer) RootOption {
	return func(r *RootCommand) {
		r.out = out
		r.errOut = errOut
	}
}

// WithInteractive sets the terminal check used by `clockin ui`
func WithInteractive(fn func() bool) RootOption {
	return func(r *RootCommand) {
		r.isInteractive = fn
	}
}

// WithRepositoryOpener replaces config.CreateRepository
func WithRepositoryOpener(fn RepositoryOpener) RootOption {
	return func(r *RootCommand) {
		r.openRepository = fn
	}
}

// WithStateStoreOpener replaces config.CreateSessionStore
func WithStateStoreOpener(fn StateStoreOpener) RootOption {
	return func(r *RootCommand) {
		r.openStateStore = fn
	}
}

// WithTimeLocation sets the zone used for dates and clock times
func WithTimeLocation(loc *time.Location) RootOption {
	return func(r *RootCommand) {
		if loc != nil {
			r.location = loc
		}
	}
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(loader *config.Loader, opts ...RootOption) *RootCommand {
	root := &RootCommand{
		loader:        loader,
		out:           os.Stdout,
		errOut:        os.Stderr,
		isInteractive: func() bool { return false },
		location:      time.Local,
		openRepository: func(ctx context.Context, cfg *config.Config) (repository.TimeEntryRepository, error) {
			return config.CreateRepository(ctx, cfg)
		},
		openStateStore: func(cfg *config.Config) (session.StateStore, error) {
			return config.CreateSessionStore(cfg)
		},
	}
	for _, opt := range opts {
		opt(root)
	}

	root.cmd = &cobra.Command{
		Use:   "clockin",
		Short: "A command-line attendance clock",
		Long: `clockin records when you start and stop working and keeps the history.

EXAMPLES:
  clockin start                            # Clock in now
  clockin status --watch                   # Follow the elapsed time
  clockin stop                             # Clock out and record the interval
  clockin history --since 1w               # Entries from the last week
  clockin history --from 2024-03-01 --to 2024-03-31
  clockin summary --since 1mo              # Worked time per day
  clockin export --format csv -o out.csv   # Export entries
  clockin ui                               # Full-screen clock with history
  clockin serve                            # Run the time-entry REST service

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > .env file > defaults

    CLOCKIN_OWNER                          Email the entries are recorded under
    CLOCKIN_DB_DRIVER                      sqlite or postgres (default: sqlite)
    CLOCKIN_DB_DIR                         Database directory (default: ~/.clockin)
    CLOCKIN_DB_DSN                         PostgreSQL connection string
    CLOCKIN_REMOTE_URL                     Use a clockin server as the store
    CLOCKIN_REMOTE_TOKEN                   Bearer token for the remote store
    CLOCKIN_STATE_FILE                     Session snapshot (default: ~/.clockin/state.json)
    CLOCKIN_TIME_FORMAT                    Clock time format (default: 03:04 PM)
    CLOCKIN_SERVER_ADDR                    Listen address for serve (default: :8080)
    CLOCKIN_APP_TIMEOUT                    Command timeout (default: 60s)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
	}
	root.cmd.SetOut(root.out)
	root.cmd.SetErr(root.errOut)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command
func (r *RootCommand) Execute(ctx context.Context, args []string) error {
	r.cmd.SetArgs(args)
	return r.cmd.ExecuteContext(ctx)
}

// Close releases the store opened by the last command
func (r *RootCommand) Close() error {
	if r.repo == nil {
		return nil
	}
	err := r.repo.Close()
	r.repo = nil
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("owner", "", "Email entries are recorded under (overrides CLOCKIN_OWNER)")

	// Store configuration
	flags.String("db-driver", "", "Database driver: sqlite or postgres (overrides CLOCKIN_DB_DRIVER)")
	flags.String("db-dir", "", "Database directory (overrides CLOCKIN_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides CLOCKIN_DB_FILENAME)")
	flags.String("db-dsn", "", "PostgreSQL connection string (overrides CLOCKIN_DB_DSN)")
	flags.String("remote-url", "", "Remote clockin server (overrides CLOCKIN_REMOTE_URL)")
	flags.String("remote-token", "", "Bearer token for the remote server (overrides CLOCKIN_REMOTE_TOKEN)")

	flags.String("state-file", "", "Session snapshot file (overrides CLOCKIN_STATE_FILE)")
	flags.String("time-format", "", "Clock time format (overrides CLOCKIN_TIME_FORMAT)")

	flags.Duration("app-timeout", 0, "Application timeout (overrides CLOCKIN_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides CLOCKIN_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Clock in",
		Long:  "Open a check-in at the current time. Starting while clocked in changes nothing.",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, args []string) error {
			return NewStartCommand(app).Execute(ctx, args)
		}),
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Clock out",
		Long:  "Close the open check-in and record it. Stopping while idle changes nothing.",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, args []string) error {
			return NewStopCommand(app).Execute(ctx, args)
		}),
	}

	var statusOpts StatusOptions
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether you are clocked in",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, args []string) error {
			return NewStatusCommand(app).Run(ctx, statusOpts)
		}),
	}
	statusOpts.BindFlags(statusCmd.Flags())

	var historyOpts HistoryOptions
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded time entries",
		Long: `List recorded time entries, optionally limited to a date range.

A total row is shown whenever a range is selected.

Examples:
  clockin history                                  # All entries
  clockin history --since 2w                       # Last two weeks
  clockin history --from 2024-03-01 --to 2024-03-31
  clockin history --format json`,
		Args: cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, args []string) error {
			return NewHistoryCommand(app).Run(ctx, historyOpts)
		}),
	}
	historyOpts.BindFlags(historyCmd.Flags())
	historyCmd.Flags().StringVar(&historyOpts.Format, "format", "", "Output format: table, csv or json (overrides CLOCKIN_HISTORY_DEFAULT_FORMAT)")

	var summaryOpts RangeOptions
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show worked time per day",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, args []string) error {
			return NewSummaryCommand(app).Run(ctx, summaryOpts)
		}),
	}
	summaryOpts.BindFlags(summaryCmd.Flags())

	var exportOpts ExportOptions
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export time entries as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, app *App, args []string) error {
			return NewExportCommand(app).Run(ctx, exportOpts)
		}),
	}
	exportOpts.BindFlags(exportCmd.Flags())
	exportCmd.Flags().StringVar(&exportOpts.Format, "format", "", "Export format: csv or json (overrides CLOCKIN_OUTPUT_DEFAULT_FORMAT)")
	exportCmd.Flags().StringVarP(&exportOpts.Output, "output", "o", "", "Write to this file instead of stdout")

	uiCmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the full-screen attendance clock",
		Long:  "Open the attendance clock with the live timer and history. Needs an interactive terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			return NewUICommand(app).Execute(cmd.Context(), args)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the time-entry REST service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.serve(cmd.Context())
		},
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides CLOCKIN_SERVER_ADDR)")

	r.cmd.AddCommand(
		startCmd,
		stopCmd,
		statusCmd,
		historyCmd,
		summaryCmd,
		exportCmd,
		uiCmd,
		serveCmd,
	)
}

// withApp builds the application and runs fn under the application timeout.
// status --watch keeps running until interrupted instead.
func (r *RootCommand) withApp(fn func(ctx context.Context, app *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if watch, _ := cmd.Flags().GetBool("watch"); !watch {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.getAppTimeout())
			defer cancel()
		}

		app, err := r.buildApp(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, app, args)
	}
}

// buildApp opens the stores and restores the session
func (r *RootCommand) buildApp(ctx context.Context) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := r.config

	repo, err := r.openRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r.repo = repo

	store, err := r.openStateStore(cfg)
	if err != nil {
		return nil, NewErrorHandler().Handle("open session state", err)
	}

	sess, err := session.Restore(cfg.Session.Owner, store, repo,
		session.WithWriteTimeout(cfg.GetWriteTimeout()),
		session.WithLogger(logging.New(logging.Output(), cfg.Application.Verbose)),
	)
	if err != nil {
		fmt.Fprintf(r.errOut, "Warning: session state could not be read, starting idle: %s\n", errors.GetUserMessage(err))
	}

	businessAPI := api.NewBusinessAPI(sess, repo,
		api.WithLocation(r.location),
		api.WithValidator(validation.NewTimeEntryValidatorWithConfig(cfg)),
	)

	app := NewAppWithConfig(businessAPI, cfg)
	app.SetOutput(r.out, r.errOut)
	app.SetLocation(r.location)
	app.IsInteractive = r.isInteractive
	if client, ok := repo.(*remote.Client); ok {
		owner := cfg.Session.Owner
		app.Feed = func(ctx context.Context) (<-chan *domain.TimeEntry, error) {
			return client.Subscribe(ctx, owner)
		}
	}

	r.app = app
	return app, nil
}

// serve runs the REST service over the configured database
func (r *RootCommand) serve(ctx context.Context) error {
	cfg := r.config
	if cfg.Remote.URL != "" {
		return errors.NewInvalidStateError("serve", "a remote store is configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	repo, err := r.openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	r.repo = repo

	logger := logging.New(r.errOut, cfg.Application.Verbose)
	srv := server.New(repo,
		server.WithLogger(logger),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		server.WithQueryTimeout(cfg.GetQueryTimeout()),
		server.WithValidator(validation.NewTimeEntryValidatorWithConfig(cfg)),
	)

	logger.Info("clockin server listening", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}

// loadConfig layers flag overrides over the environment
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	if r.loader == nil {
		return fmt.Errorf("configuration not initialized")
	}

	cfg, err := r.loader.LoadWithOverrides(r.getOverridesFromFlags(cmd))
	if err != nil {
		return err
	}
	r.config = cfg
	return nil
}

// getOverridesFromFlags collects the persistent flags the user actually set
func (r *RootCommand) getOverridesFromFlags(cmd *cobra.Command) *config.ConfigOverrides {
	flags := cmd.Flags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	overrides.Owner = stringFlag("owner")
	overrides.DBDriver = stringFlag("db-driver")
	overrides.DBDir = stringFlag("db-dir")
	overrides.DBFilename = stringFlag("db-filename")
	overrides.DBDSN = stringFlag("db-dsn")
	overrides.RemoteURL = stringFlag("remote-url")
	overrides.RemoteToken = stringFlag("remote-token")
	overrides.StateFile = stringFlag("state-file")
	overrides.TimeFormat = stringFlag("time-format")
	overrides.ServerAddr = stringFlag("addr")

	if flags.Changed("app-timeout") {
		timeout, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &timeout
	}
	if flags.Changed("verbose") {
		verbose, _ := flags.GetBool("verbose")
		overrides.Verbose = &verbose
	}
	return overrides
}
