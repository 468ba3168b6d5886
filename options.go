package segalloc

import (
	"log/slog"
	"time"

	"github.com/helixml/segalloc/internal/config"
)

type databaseType int

const (
	databaseDefault databaseType = iota
	databaseSQLite
	databasePostgres
	databaseURL
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	database       databaseType
	dbPath         string
	dbURL          string
	dataDir        string
	logger         *slog.Logger
	linkScope      float64
	maxUploadBytes int64
	sessionLimit   int
	sessionIdle    time.Duration
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:        config.DefaultDataDir(),
		linkScope:      config.DefaultLinkScope,
		maxUploadBytes: config.DefaultMaxUploadBytes,
		sessionLimit:   config.DefaultSessionLimit,
		sessionIdle:    config.DefaultSessionIdle,
	}
}

func (c *clientConfig) databaseURL() string {
	switch c.database {
	case databaseSQLite:
		return "sqlite:///" + c.dbPath
	case databasePostgres, databaseURL:
		return c.dbURL
	default:
		return config.DefaultDBURL(c.dataDir)
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores documents in the SQLite file at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres stores documents in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbURL = dsn
	}
}

// WithDatabaseURL selects the database from a sqlite:/// or postgres:// URL.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		if url == "" {
			return
		}
		c.database = databaseURL
		c.dbURL = url
	}
}

// WithDataDir sets the data directory. It holds the default SQLite file.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithLinkScope sets the default link tolerance for new sessions.
func WithLinkScope(scope float64) Option {
	return func(c *clientConfig) {
		if scope >= 0 {
			c.linkScope = scope
		}
	}
}

// WithSessionLimit bounds the number of live sessions.
func WithSessionLimit(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.sessionLimit = n
		}
	}
}

// WithMaxUploadBytes bounds uploaded files.
func WithMaxUploadBytes(n int64) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithSessionIdleTimeout closes sessions unused for d. Zero disables idle
// expiry.
func WithSessionIdleTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d >= 0 {
			c.sessionIdle = d
		}
	}
}

// WithAppConfig applies every setting of cfg.
func WithAppConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dataDir = cfg.DataDir()
		WithDatabaseURL(cfg.DBURL())(c)
		WithLinkScope(cfg.LinkScope())(c)
		WithSessionLimit(cfg.SessionLimit())(c)
		WithMaxUploadBytes(cfg.MaxUploadBytes())(c)
		WithSessionIdleTimeout(cfg.SessionIdleTimeout())(c)
	}
}
