package client

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Session pairs one pooled connection, owned exclusively for the session's
// lifetime, with one cursor borrowed from it. A session is open from
// acquisition until Close; the transition to closed happens exactly once, and
// both handles always attempt release.
type Session struct {
	id     string
	conn   *sqlx.Conn
	cursor *Cursor
	client *Client
	closed atomic.Bool
}

// Session acquires a connection from the pool and opens a cursor on it. The
// caller owns the pair until Close; prefer WithSession for scoped use.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	conn, err := c.db.Connx(ctx)
	if c.observability != nil {
		c.observability.recordSessionEvent("acquire", c.config.Observability, err)
	}
	if err != nil {
		c.logAt(LogLevelError, LogCategorySession, "Failed to acquire connection", "error", err)
		return nil, err
	}

	s := &Session{
		id:     uuid.NewString(),
		conn:   conn,
		client: c,
	}
	s.cursor = newCursor(s)

	if c.config.Logging != nil && c.config.Logging.LogSessionEvents {
		c.logAt(LogLevelDebug, LogCategorySession, "Session opened", "session_id", s.id)
	}
	return s, nil
}

// ID returns the session identifier used in logs and spans.
func (s *Session) ID() string {
	return s.id
}

// Conn exposes the session's connection for direct statements. The
// connection must not be retained past the session's lifetime.
func (s *Session) Conn() *sqlx.Conn {
	return s.conn
}

// Cursor returns the session's cursor. The cursor must not be used outside
// the session's lifetime.
func (s *Session) Cursor() *Cursor {
	return s.cursor
}

// Rollback issues a rollback on the session's connection.
func (s *Session) Rollback(ctx context.Context) error {
	s.client.logAt(LogLevelDebug, LogCategorySession, "Rolling back", "session_id", s.id)
	_, err := s.conn.ExecContext(ctx, "ROLLBACK")
	if s.client.observability != nil && err == nil {
		s.client.observability.recordSessionEvent("rollback", s.client.config.Observability, nil)
	}
	return err
}

// queryStatusProbe matches the status API the driver exposes on its
// connections outside the database/sql surface.
type queryStatusProbe interface {
	GetQueryStatus(ctx context.Context, queryID string) error
}

// QueryStatus probes the status of a previously submitted query by its
// tracking identifier. It does not wait: a still-running or failed query
// surfaces as an error from the driver.
func (s *Session) QueryStatus(ctx context.Context, queryID string) error {
	if s.closed.Load() {
		return NewUsageError("session is closed")
	}
	return s.conn.Raw(func(dc interface{}) error {
		probe, ok := dc.(queryStatusProbe)
		if !ok {
			return NewUsageError("driver connection does not expose query status")
		}
		return probe.GetQueryStatus(ctx, queryID)
	})
}

// Close releases the cursor, then the connection. Both releases are always
// attempted; failures are chained together rather than one suppressing the
// other. Closing an already-closed session is a no-op.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	curErr := s.cursor.Close()
	connErr := s.conn.Close()

	if s.client.observability != nil {
		s.client.observability.recordSessionEvent("release", s.client.config.Observability, nil)
	}
	if s.client.config.Logging != nil && s.client.config.Logging.LogSessionEvents {
		s.client.logAt(LogLevelDebug, LogCategorySession, "Session closed", "session_id", s.id)
	}

	return errors.Join(curErr, connErr)
}
