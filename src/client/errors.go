package client

import (
	"errors"
	"fmt"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"
)

// ErrNoRows is returned by fetch operations when the result set is exhausted.
var ErrNoRows = errors.New("no more rows in result set")

// UsageError represents an error in how a session or cursor is being used
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func NewUsageError(message string) *UsageError {
	return &UsageError{Message: message}
}

// AsDriverError extracts the driver-reported error from err's chain, if any.
// Driver errors carry an error number, a SQL state, a message and the query
// ID of the failed statement.
func AsDriverError(err error) (*sf.SnowflakeError, bool) {
	var sfErr *sf.SnowflakeError
	if errors.As(err, &sfErr) {
		return sfErr, true
	}
	return nil, false
}

// FormatDriverError renders the customized diagnostic line for a
// driver-reported error: number, SQL state, message and query ID.
func FormatDriverError(e *sf.SnowflakeError) string {
	return fmt.Sprintf("Error %d (%s): %s (%s)", e.Number, e.SQLState, e.Message, e.QueryID)
}

// IsCompilationError reports whether the error is a SQL compilation or
// access-rule violation (SQL state class 42).
func IsCompilationError(err error) bool {
	e, ok := AsDriverError(err)
	return ok && strings.HasPrefix(e.SQLState, "42")
}

// IsAuthError reports whether the error is an authentication failure
// (SQL state class 28).
func IsAuthError(err error) bool {
	e, ok := AsDriverError(err)
	return ok && strings.HasPrefix(e.SQLState, "28")
}

// IsConnectionError reports whether the error is a connection-level failure
// (SQL state class 08).
func IsConnectionError(err error) bool {
	e, ok := AsDriverError(err)
	return ok && strings.HasPrefix(e.SQLState, "08")
}

// IsDataError reports whether the error is a data exception such as a bad
// cast or numeric overflow (SQL state class 22).
func IsDataError(err error) bool {
	e, ok := AsDriverError(err)
	return ok && strings.HasPrefix(e.SQLState, "22")
}
