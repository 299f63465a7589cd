package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration options for the attendance clock
type Config struct {
	Database    DatabaseConfig
	Remote      RemoteConfig
	Session     SessionConfig
	Time        TimeConfig
	Validation  ValidationConfig
	Display     DisplayConfig
	Server      ServerConfig
	Application ApplicationConfig
	Commands    CommandsConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `env:"CLOCKIN_DB_DRIVER"`
	Dir            string        `env:"CLOCKIN_DB_DIR"`
	Filename       string        `env:"CLOCKIN_DB_FILENAME"`
	DSN            string        `env:"CLOCKIN_DB_DSN"`
	MaxConns       int           `env:"CLOCKIN_DB_MAX_CONNS"`
	QueryTimeout   time.Duration `env:"CLOCKIN_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"CLOCKIN_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"CLOCKIN_DB_DIR_PERMISSIONS"`
}

// RemoteConfig points the clock at a clockin REST service instead of a database
type RemoteConfig struct {
	URL     string        `env:"CLOCKIN_REMOTE_URL"`
	Token   string        `env:"CLOCKIN_REMOTE_TOKEN"`
	Timeout time.Duration `env:"CLOCKIN_REMOTE_TIMEOUT"`
}

// SessionConfig identifies the owner and where the session snapshot lives
type SessionConfig struct {
	Owner        string        `env:"CLOCKIN_OWNER"`
	StateFile    string        `env:"CLOCKIN_STATE_FILE"`
	TickInterval time.Duration `env:"CLOCKIN_TICK_INTERVAL"`
}

// TimeConfig holds time formatting configuration
type TimeConfig struct {
	TimeFormat string `env:"CLOCKIN_TIME_FORMAT"`
	DateFormat string `env:"CLOCKIN_DATE_FORMAT"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	MaxDuration    time.Duration `env:"CLOCKIN_VALIDATION_MAX_DURATION"`
	OwnerMaxLength int           `env:"CLOCKIN_VALIDATION_OWNER_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	ClockedInLabel string `env:"CLOCKIN_DISPLAY_CLOCKED_IN_LABEL"`
	TableHeight    int    `env:"CLOCKIN_DISPLAY_TABLE_HEIGHT"`
}

// ServerConfig holds the REST service settings
type ServerConfig struct {
	Addr           string   `env:"CLOCKIN_SERVER_ADDR"`
	AllowedOrigins []string `env:"CLOCKIN_SERVER_ALLOWED_ORIGINS"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"CLOCKIN_APP_TIMEOUT"`
	Verbose bool          `env:"CLOCKIN_APP_VERBOSE"`
}

// CommandsConfig holds command-specific defaults
type CommandsConfig struct {
	HistoryDefaultFormat string `env:"CLOCKIN_HISTORY_DEFAULT_FORMAT"`
	OutputDefaultFormat  string `env:"CLOCKIN_OUTPUT_DEFAULT_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".clockin")

	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Dir:            baseDir,
			Filename:       "clockin.db",
			MaxConns:       10,
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   10 * time.Second,
			DirPermissions: 0700,
		},
		Remote: RemoteConfig{
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			StateFile:    filepath.Join(baseDir, "state.json"),
			TickInterval: time.Second,
		},
		Time: TimeConfig{
			TimeFormat: "03:04 PM",
			DateFormat: "1/2/2006",
		},
		Validation: ValidationConfig{
			MaxDuration:    24 * time.Hour,
			OwnerMaxLength: 254,
		},
		Display: DisplayConfig{
			ClockedInLabel: "Clocked In",
			TableHeight:    10,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Commands: CommandsConfig{
			HistoryDefaultFormat: "table",
			OutputDefaultFormat:  "csv",
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout bounds the background create of a closed entry
func (c *Config) GetWriteTimeout() time.Duration {
	if c.Remote.URL != "" {
		return c.Remote.Timeout
	}
	return c.Database.WriteTimeout
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if driver := os.Getenv("CLOCKIN_DB_DRIVER"); driver != "" {
		c.Database.Driver = strings.ToLower(driver)
	}
	if dir := os.Getenv("CLOCKIN_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("CLOCKIN_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if dsn := os.Getenv("CLOCKIN_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if conns := os.Getenv("CLOCKIN_DB_MAX_CONNS"); conns != "" {
		c.Database.MaxConns = ParseIntWithFallback(conns, c.Database.MaxConns)
	}
	if timeout := os.Getenv("CLOCKIN_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if timeout := os.Getenv("CLOCKIN_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Database.WriteTimeout = ParseDurationWithFallback(timeout, c.Database.WriteTimeout)
	}
	if perms := os.Getenv("CLOCKIN_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Remote configuration
	if u := os.Getenv("CLOCKIN_REMOTE_URL"); u != "" {
		c.Remote.URL = u
	}
	if token := os.Getenv("CLOCKIN_REMOTE_TOKEN"); token != "" {
		c.Remote.Token = token
	}
	if timeout := os.Getenv("CLOCKIN_REMOTE_TIMEOUT"); timeout != "" {
		c.Remote.Timeout = ParseDurationWithFallback(timeout, c.Remote.Timeout)
	}

	// Session configuration
	if owner := os.Getenv("CLOCKIN_OWNER"); owner != "" {
		c.Session.Owner = strings.TrimSpace(owner)
	}
	if stateFile := os.Getenv("CLOCKIN_STATE_FILE"); stateFile != "" {
		c.Session.StateFile = stateFile
	}
	if interval := os.Getenv("CLOCKIN_TICK_INTERVAL"); interval != "" {
		c.Session.TickInterval = ParseDurationWithFallback(interval, c.Session.TickInterval)
	}

	// Time configuration
	if format := os.Getenv("CLOCKIN_TIME_FORMAT"); format != "" {
		c.Time.TimeFormat = format
	}
	if format := os.Getenv("CLOCKIN_DATE_FORMAT"); format != "" {
		c.Time.DateFormat = format
	}

	// Validation configuration
	if maxDur := os.Getenv("CLOCKIN_VALIDATION_MAX_DURATION"); maxDur != "" {
		c.Validation.MaxDuration = ParseDurationWithFallback(maxDur, c.Validation.MaxDuration)
	}
	if maxLen := os.Getenv("CLOCKIN_VALIDATION_OWNER_MAX"); maxLen != "" {
		c.Validation.OwnerMaxLength = ParseIntWithFallback(maxLen, c.Validation.OwnerMaxLength)
	}

	// Display configuration
	if label := os.Getenv("CLOCKIN_DISPLAY_CLOCKED_IN_LABEL"); label != "" {
		c.Display.ClockedInLabel = label
	}
	if height := os.Getenv("CLOCKIN_DISPLAY_TABLE_HEIGHT"); height != "" {
		c.Display.TableHeight = ParseIntWithFallback(height, c.Display.TableHeight)
	}

	// Server configuration
	if addr := os.Getenv("CLOCKIN_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("CLOCKIN_SERVER_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = SplitList(origins)
	}

	// Application configuration
	if timeout := os.Getenv("CLOCKIN_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("CLOCKIN_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Commands configuration
	if format := os.Getenv("CLOCKIN_HISTORY_DEFAULT_FORMAT"); format != "" {
		c.Commands.HistoryDefaultFormat = format
	}
	if format := os.Getenv("CLOCKIN_OUTPUT_DEFAULT_FORMAT"); format != "" {
		c.Commands.OutputDefaultFormat = format
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case DriverPostgres:
		if c.Database.DSN == "" && c.Remote.URL == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres driver needs CLOCKIN_DB_DSN"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or postgres"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	// Validate remote configuration
	if c.Remote.URL != "" && c.Remote.Timeout <= 0 {
		return &ConfigError{Field: "remote.timeout", Message: "remote timeout must be positive"}
	}

	// Validate session configuration
	if c.Session.StateFile == "" {
		return &ConfigError{Field: "session.state_file", Message: "state file cannot be empty"}
	}
	if c.Session.TickInterval <= 0 {
		return &ConfigError{Field: "session.tick_interval", Message: "tick interval must be positive"}
	}

	// Validate time configuration
	if c.Time.TimeFormat == "" {
		return &ConfigError{Field: "time.time_format", Message: "time format cannot be empty"}
	}
	if c.Time.DateFormat == "" {
		return &ConfigError{Field: "time.date_format", Message: "date format cannot be empty"}
	}

	// Validate validation configuration
	if c.Validation.MaxDuration <= 0 {
		return &ConfigError{Field: "validation.max_duration", Message: "max duration must be positive"}
	}
	if c.Validation.OwnerMaxLength < 1 {
		return &ConfigError{Field: "validation.owner_max_length", Message: "owner maximum length must be at least 1"}
	}

	// Validate display configuration
	if c.Display.TableHeight < 3 {
		return &ConfigError{Field: "display.table_height", Message: "table height must be at least 3"}
	}
	if c.Display.ClockedInLabel == "" {
		return &ConfigError{Field: "display.clocked_in_label", Message: "clocked-in label cannot be empty"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "server address cannot be empty"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// SplitList splits a comma separated value, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
