package client

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sf "github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	c := NewClientFromDB(db, DefaultConfig())
	t.Cleanup(func() { _ = c.Close() })
	return c, mock
}

func TestSessionAcquireAndClose(t *testing.T) {
	c, mock := newMockClient(t)

	sess, err := c.Session(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID())
	assert.NotNil(t, sess.Conn())
	assert.NotNil(t, sess.Cursor())

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close(), "closing twice must be a no-op")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionCloseReleasesCursor(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	sess, err := c.Session(context.Background())
	require.NoError(t, err)

	cur := sess.Cursor()
	require.NoError(t, cur.Execute(context.Background(), "SELECT 1"))
	require.NoError(t, sess.Close())

	_, err = cur.FetchOne()
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
}

func TestSessionRollback(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	sess, err := c.Session(context.Background())
	require.NoError(t, err)
	defer func() { _ = sess.Close() }()

	require.NoError(t, sess.Rollback(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSessionReleasesOnSuccess(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	var seen *Session
	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		seen = sess
		if err := sess.Cursor().Execute(ctx, "SELECT 1"); err != nil {
			return err
		}
		row, err := sess.Cursor().FetchOne()
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), row[0])
		return nil
	})
	require.NoError(t, err)
	assert.True(t, seen.closed.Load(), "session must be released after the closure returns")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSessionRollsBackOnDriverError(t *testing.T) {
	c, mock := newMockClient(t)
	driverErr := &sf.SnowflakeError{
		Number:   1003,
		SQLState: "42000",
		Message:  "SQL compilation error",
		QueryID:  "01b2c3d4-0000-0000-0000-000000000000",
	}
	mock.ExpectQuery("SELECT broken").WillReturnError(driverErr)
	mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		return sess.Cursor().Execute(ctx, "SELECT broken")
	})

	var sfErr *sf.SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, driverErr.Number, sfErr.Number)
	assert.Equal(t, driverErr.SQLState, sfErr.SQLState)
	assert.Equal(t, driverErr.Message, sfErr.Message)
	assert.Equal(t, driverErr.QueryID, sfErr.QueryID)
	assert.NoError(t, mock.ExpectationsWereMet(), "rollback must be issued before release")
}

func TestWithSessionSkipsRollbackOnPlainError(t *testing.T) {
	c, mock := newMockClient(t)

	boom := errors.New("application failure")
	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet(), "no rollback expected for non-driver errors")
}

func TestWithSessionRollbackFailureStillReturnsOriginal(t *testing.T) {
	c, mock := newMockClient(t)
	driverErr := &sf.SnowflakeError{Number: 604, SQLState: "57014", Message: "statement aborted"}
	mock.ExpectQuery("DELETE FROM t").WillReturnError(driverErr)
	mock.ExpectExec("ROLLBACK").WillReturnError(errors.New("connection gone"))

	err := c.WithSession(context.Background(), func(ctx context.Context, sess *Session) error {
		return sess.Cursor().Execute(ctx, "DELETE FROM t")
	})

	var sfErr *sf.SnowflakeError
	require.ErrorAs(t, err, &sfErr)
	assert.Equal(t, 604, sfErr.Number)
}

func TestWithSessionReleasesOnPanic(t *testing.T) {
	c, _ := newMockClient(t)

	var sess *Session
	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected the panic to propagate")
			}
		}()
		_ = c.WithSession(context.Background(), func(ctx context.Context, s *Session) error {
			sess = s
			panic("closure failure")
		})
	}()
	require.NotNil(t, sess)
	assert.True(t, sess.closed.Load(), "session must be released when the closure panics")
}
