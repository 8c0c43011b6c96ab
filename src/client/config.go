package client

import (
	"strconv"
	"time"
)

// Config holds configuration options for the client
type Config struct {
	// ProfilePath overrides the connections.toml location. Empty means the
	// default lookup ($SNOWFLAKE_HOME, then ~/.snowflake).
	ProfilePath string

	// QueryTag is forwarded as the QUERY_TAG session parameter. Empty means
	// no tag.
	QueryTag string

	// StatementTimeout is forwarded as STATEMENT_TIMEOUT_IN_SECONDS. Zero
	// means the server default. No timeout is enforced client-side.
	StatementTimeout time.Duration

	// SessionParams are free-form session parameters forwarded verbatim to
	// the driver at connection time. They take precedence over QueryTag and
	// StatementTimeout when the same key appears in both.
	SessionParams map[string]string

	// Pool holds connection pool configuration
	Pool *PoolConfig

	// Observability holds telemetry configuration
	Observability *ObservabilityConfig

	// Logging holds logging configuration
	Logging *LoggingConfig
}

// PoolConfig provides connection pool configuration options, applied to the
// database/sql pool that owns the driver connections.
type PoolConfig struct {
	// MaxOpenConns specifies the maximum number of open connections
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns specifies the maximum number of idle connections retained
	// Default: 2
	MaxIdleConns int

	// ConnMaxIdleTime specifies how long connections can be idle before being closed
	// Default: 30 minutes
	ConnMaxIdleTime time.Duration

	// ConnMaxLifetime specifies the maximum lifetime of a connection
	// Default: 1 hour
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		StatementTimeout: 5 * time.Minute,
		Pool: &PoolConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxIdleTime: 30 * time.Minute,
			ConnMaxLifetime: 1 * time.Hour,
		},
		Observability: DefaultObservabilityConfig(),
		Logging:       DefaultLoggingConfig(),
	}
}

// sessionParams flattens the configured session parameters into the map the
// driver receives at connect time.
func (c *Config) sessionParams() map[string]string {
	params := map[string]string{}
	if c.QueryTag != "" {
		params["QUERY_TAG"] = c.QueryTag
	}
	if c.StatementTimeout > 0 {
		params["STATEMENT_TIMEOUT_IN_SECONDS"] = strconv.Itoa(int(c.StatementTimeout.Seconds()))
	}
	for k, v := range c.SessionParams {
		params[k] = v
	}
	return params
}
