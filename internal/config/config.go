// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8080
	DefaultLogLevel       = "INFO"
	DefaultLinkScope      = 0.5
	DefaultMaxUploadBytes = 10 << 20
	DefaultSessionLimit   = 100
	DefaultSessionIdle    = 30 * time.Minute
	DefaultDataSubdir     = ".segalloc"
	DefaultDBFile         = "segalloc.db"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig holds the resolved application configuration.
type AppConfig struct {
	host           string
	port           int
	dataDir        string
	dbURL          string
	logLevel       string
	logFormat      LogFormat
	linkScope      float64
	maxUploadBytes int64
	corsOrigins    []string
	sessionLimit   int
	sessionIdle    time.Duration
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataSubdir
	}
	return filepath.Join(home, DefaultDataSubdir)
}

// DefaultDBURL returns the SQLite URL inside dataDir.
func DefaultDBURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDBFile)
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:           DefaultHost,
		port:           DefaultPort,
		dataDir:        dataDir,
		dbURL:          DefaultDBURL(dataDir),
		logLevel:       DefaultLogLevel,
		logFormat:      LogFormatPretty,
		linkScope:      DefaultLinkScope,
		maxUploadBytes: DefaultMaxUploadBytes,
		corsOrigins:    []string{"*"},
		sessionLimit:   DefaultSessionLimit,
		sessionIdle:    DefaultSessionIdle,
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns host:port.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the document library database URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level name.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// LinkScope returns the default boundary tolerance for linking.
func (c AppConfig) LinkScope() float64 { return c.linkScope }

// MaxUploadBytes returns the largest accepted annotation file.
func (c AppConfig) MaxUploadBytes() int64 { return c.maxUploadBytes }

// CORSAllowedOrigins returns the origins allowed by the HTTP API.
func (c AppConfig) CORSAllowedOrigins() []string {
	out := make([]string, len(c.corsOrigins))
	copy(out, c.corsOrigins)
	return out
}

// SessionLimit returns the maximum number of live sessions.
func (c AppConfig) SessionLimit() int { return c.sessionLimit }

// SessionIdleTimeout returns how long an unused session lives. Zero keeps
// sessions until evicted by the limit.
func (c AppConfig) SessionIdleTimeout() time.Duration { return c.sessionIdle }

// EnsureDataDir creates the data directory when missing.
func (c AppConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// AppConfigOption configures an AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory. A database URL still pointing at the
// default file follows the new directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if c.dbURL == "" || c.dbURL == DefaultDBURL(c.dataDir) {
			c.dbURL = DefaultDBURL(dir)
		}
		c.dataDir = dir
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithLinkScope sets the linking tolerance. Negative values are ignored.
func WithLinkScope(scope float64) AppConfigOption {
	return func(c *AppConfig) {
		if scope >= 0 {
			c.linkScope = scope
		}
	}
}

// WithMaxUploadBytes sets the upload size limit.
func WithMaxUploadBytes(n int64) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithCORSAllowedOrigins sets the allowed CORS origins.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithSessionLimit sets the live session bound.
func WithSessionLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.sessionLimit = n
		}
	}
}

// WithSessionIdleTimeout sets the idle session lifetime. Negative values are
// ignored.
func WithSessionIdleTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d >= 0 {
			c.sessionIdle = d
		}
	}
}

// NewAppConfigWithOptions creates an AppConfig from defaults and options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	return NewAppConfig().Apply(opts...)
}

// Apply returns a copy with opts applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns attributes describing the configuration. Credentials in
// database URLs are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("data_dir", c.dataDir),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("log_level", c.logLevel),
		slog.Float64("link_scope", c.linkScope),
		slog.Int64("max_upload_bytes", c.maxUploadBytes),
		slog.Int("session_limit", c.sessionLimit),
		slog.Duration("session_idle_timeout", c.sessionIdle),
	}
}

func (c AppConfig) maskedDBURL() string {
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseList splits a comma-separated list, dropping blanks.
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
