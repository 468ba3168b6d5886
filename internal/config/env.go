package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds environment-based configuration.
// Nested structs use an underscore delimiter (e.g. SESSION_LIMIT).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.segalloc
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the document library database URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/segalloc.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// LinkScope is the default boundary tolerance used when linking tiers.
	// Env: LINK_SCOPE (default: 0.5)
	LinkScope float64 `envconfig:"LINK_SCOPE" default:"0.5"`

	// MaxUploadBytes bounds uploaded annotation files.
	// Env: MAX_UPLOAD_BYTES (default: 10485760)
	MaxUploadBytes int64 `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Session configures allocation sessions.
	Session SessionEnv `envconfig:"SESSION"`
}

// SessionEnv holds environment configuration for sessions.
type SessionEnv struct {
	// Limit is the number of live sessions kept; the oldest is evicted.
	// Env: SESSION_LIMIT (default: 100)
	Limit int `envconfig:"LIMIT" default:"100"`

	// IdleTimeout closes sessions unused for this long; 0 disables.
	// Env: SESSION_IDLE_TIMEOUT (default: 30m)
	IdleTimeout time.Duration `envconfig:"IDLE_TIMEOUT" default:"30m"`
}

// LoadFromEnv loads configuration from unprefixed environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix("")
}

// LoadFromEnvWithPrefix loads configuration with a prefix, so "SEGALLOC"
// reads SEGALLOC_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	var opts []AppConfigOption
	if e.Host != "" {
		opts = append(opts, WithHost(e.Host))
	}
	if e.Port != 0 {
		opts = append(opts, WithPort(e.Port))
	}
	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(strings.ToUpper(e.LogLevel)))
	}
	if e.LogFormat != "" {
		opts = append(opts, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.CORSAllowedOrigins != "" {
		opts = append(opts, WithCORSAllowedOrigins(ParseList(e.CORSAllowedOrigins)))
	}
	opts = append(opts,
		WithLinkScope(e.LinkScope),
		WithMaxUploadBytes(e.MaxUploadBytes),
		WithSessionLimit(e.Session.Limit),
		WithSessionIdleTimeout(e.Session.IdleTimeout),
	)
	return NewAppConfigWithOptions(opts...)
}

func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
