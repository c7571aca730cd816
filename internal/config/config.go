// Package config loads application settings from environment variables.
// Defaults are applied for unset values and the result is validated once
// at startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Upload   UploadConfig
	Report   ReportConfig
	UI       UIConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings for the operator page.
type ServerConfig struct {
	// Host is the interface to bind to. The page serves a single local
	// operator, so the default is loopback only.
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout stays 0 so the /events stream is not cut off.
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout bounds ordinary (non-streaming) requests.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `env:"STORE_DRIVER" default:"postgres"`

	// URL is the PostgreSQL connection string, required when Driver is postgres.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file used when Driver is sqlite.
	SQLitePath string `env:"SQLITE_PATH" default:"casemaster.db"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds spreadsheet import settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 50MB).
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// StagingDir receives selected files before they are submitted.
	// Empty means a casemaster-uploads directory under os.TempDir().
	StagingDir string `env:"UPLOAD_STAGING_DIR"`

	// BatchSize is the number of rows inserted per batch.
	BatchSize int `env:"UPLOAD_BATCH_SIZE" default:"500"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	// OutputDir is where generated reports are written.
	// Empty means <home>/Downloads.
	OutputDir string `env:"REPORT_OUTPUT_DIR"`
}

// UIConfig holds the display delays of the operator page.
type UIConfig struct {
	// SuccessDelay is how long a success message stays before the next state.
	SuccessDelay time.Duration `env:"UI_SUCCESS_DELAY" default:"3s"`

	// FailureDelay is how long an error message stays before returning to idle.
	FailureDelay time.Duration `env:"UI_FAILURE_DELAY" default:"5s"`
}

// SecurityConfig holds access settings for the HTTP surface.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on /api routes.
	RequireAPIKey bool `env:"SECURITY_REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys.
	APIKeys []string `env:"SECURITY_API_KEYS"`

	// TrustedProxies lists CIDRs whose X-Real-IP and X-Forwarded-For
	// headers are believed.
	TrustedProxies []string `env:"SECURITY_TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// DriverName returns Driver normalized to lower case.
func (s StoreConfig) DriverName() string {
	return strings.ToLower(strings.TrimSpace(s.Driver))
}
