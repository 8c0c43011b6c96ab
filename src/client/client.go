// Package client implements a thin Snowflake client on top of the external
// gosnowflake driver: named-profile connections, scoped query sessions with
// guaranteed release, synchronous and asynchronous execution, and result
// shaping (rows, dict-mapped rows, tabular batches).
package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/copdips/snowkit/src/profile"
)

// Client owns the pooled connection to one warehouse, configured from a
// named connection profile. All query work happens inside sessions obtained
// from the client.
type Client struct {
	db            *sqlx.DB
	profile       *profile.Profile
	profileName   string
	config        *Config
	observability *observabilityInstruments
	logger        Logger
}

// NewClient connects using the named connection profile and default
// configuration. An empty name falls back to the environment's default
// profile.
func NewClient(profileName string) (*Client, error) {
	return NewClientWithConfig(profileName, nil)
}

// NewClientWithConfig connects using the named connection profile and custom
// configuration. If config is nil, default configuration is used. The
// configured session parameters are forwarded verbatim to the driver at
// connection time.
func NewClientWithConfig(profileName string, config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	c := &Client{
		profileName: profileName,
		config:      config,
	}

	// Initialize logger
	if config.Logging != nil && config.Logging.Logger != nil {
		c.logger = config.Logging.Logger
	} else {
		c.logger = &NoOpLogger{}
	}
	c.applyCategoryLevels()

	c.logAt(LogLevelInfo, LogCategoryClient, "Initializing snowkit client", "profile", profileName)

	// Initialize observability
	if config.Observability != nil && (config.Observability.EnableTracing || config.Observability.EnableMetrics) {
		c.observability = initObservability()
		c.logAt(LogLevelDebug, LogCategoryClient, "Observability enabled", "tracing", config.Observability.EnableTracing, "metrics", config.Observability.EnableMetrics)
	}

	resolver, err := profile.NewResolver(config.ProfilePath)
	if err != nil {
		c.logAt(LogLevelError, LogCategoryProfile, "Failed to load connection profiles", "error", err)
		return nil, err
	}

	prof, err := resolver.Resolve(profileName)
	if err != nil {
		c.logAt(LogLevelError, LogCategoryProfile, "Failed to resolve connection profile", "profile", profileName, "error", err)
		return nil, err
	}
	c.profile = prof
	c.logAt(LogLevelDebug, LogCategoryProfile, "Connection profile resolved", "address", prof.Address(), "database", prof.Database, "warehouse", prof.Warehouse)

	sfCfg, err := prof.Config()
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", profileName, err)
	}
	sfCfg.Application = Application()
	for k, v := range config.sessionParams() {
		val := v
		sfCfg.Params[k] = &val
	}

	connector := sf.NewConnector(sf.SnowflakeDriver{}, *sfCfg)
	c.attach(sqlx.NewDb(sql.OpenDB(connector), "snowflake"))

	if err := c.Ping(context.Background()); err != nil {
		c.logAt(LogLevelError, LogCategoryClient, "Initial ping failed", "error", err)
		_ = c.db.Close()
		return nil, err
	}

	c.logAt(LogLevelInfo, LogCategoryClient, "Client initialized successfully", "address", prof.Address())
	return c, nil
}

// NewClientFromDB wraps an existing database handle instead of opening one
// from a profile. The caller keeps ownership of pool sizing; session
// semantics are unchanged.
func NewClientFromDB(db *sql.DB, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	c := &Client{config: config}
	if config.Logging != nil && config.Logging.Logger != nil {
		c.logger = config.Logging.Logger
	} else {
		c.logger = &NoOpLogger{}
	}
	c.applyCategoryLevels()
	if config.Observability != nil && (config.Observability.EnableTracing || config.Observability.EnableMetrics) {
		c.observability = initObservability()
	}
	c.db = sqlx.NewDb(db, "snowflake")
	return c
}

func (c *Client) attach(db *sqlx.DB) {
	if pool := c.config.Pool; pool != nil {
		db.SetMaxOpenConns(pool.MaxOpenConns)
		db.SetMaxIdleConns(pool.MaxIdleConns)
		db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	c.db = db
}

// DB exposes the underlying handle for callers that need raw access.
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Profile returns the resolved connection profile, nil when the client was
// built from an existing handle.
func (c *Client) Profile() *profile.Profile {
	return c.profile
}

// Ping verifies the warehouse is reachable with the profile's credentials.
func (c *Client) Ping(ctx context.Context) error {
	c.logAt(LogLevelDebug, LogCategoryClient, "Pinging warehouse")
	if err := c.db.PingContext(ctx); err != nil {
		return err
	}
	c.logAt(LogLevelDebug, LogCategoryClient, "Ping successful")
	return nil
}

// Close releases the client's connection pool.
func (c *Client) Close() error {
	c.logAt(LogLevelInfo, LogCategoryClient, "Closing client")
	return c.db.Close()
}

// WithSession acquires a (connection, cursor) pair, runs fn with it, and
// guarantees release of both on every exit path, including a panic inside fn.
// When fn returns a driver-reported error, the default and a formatted
// diagnostic are logged, a rollback is issued on the connection, and the same
// error is returned to the caller; terminal handling stays with the caller.
// Any other error propagates unchanged. Release failures are chained onto the
// returned error, never swallowed.
func (c *Client) WithSession(ctx context.Context, fn func(context.Context, *Session) error) (err error) {
	sess, err := c.Session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := sess.Close(); relErr != nil {
			err = errors.Join(err, relErr)
		}
	}()

	err = fn(ctx, sess)
	if sfErr, ok := AsDriverError(err); ok {
		// default diagnostic, then the customized one
		c.logAt(LogLevelError, LogCategoryQuery, sfErr.Error())
		c.logAt(LogLevelError, LogCategoryQuery, FormatDriverError(sfErr))
		if rbErr := sess.Rollback(ctx); rbErr != nil {
			c.logAt(LogLevelWarn, LogCategorySession, "Rollback after driver error failed", "session_id", sess.ID(), "error", rbErr)
		}
	}
	return err
}

// logAt routes a message through the category-aware surface when the
// configured logger supports it; plain loggers get the message untagged.
func (c *Client) logAt(level LogLevel, category LogCategory, msg string, keysAndValues ...interface{}) {
	if cl, ok := c.logger.(CategorizedLogger); ok {
		cl.LogWithCategory(level, category, msg, keysAndValues...)
		return
	}
	switch level {
	case LogLevelDebug:
		c.logger.Debug(msg, keysAndValues...)
	case LogLevelInfo:
		c.logger.Info(msg, keysAndValues...)
	case LogLevelWarn:
		c.logger.Warn(msg, keysAndValues...)
	case LogLevelError:
		c.logger.Error(msg, keysAndValues...)
	}
}

// applyCategoryLevels pushes the configured per-category levels into the
// logger, when it supports them.
func (c *Client) applyCategoryLevels() {
	if c.config.Logging == nil || len(c.config.Logging.CategoryLevels) == 0 {
		return
	}
	cl, ok := c.logger.(CategorizedLogger)
	if !ok {
		return
	}
	for category, level := range c.config.Logging.CategoryLevels {
		cl.SetCategoryLevel(category, level)
	}
}
