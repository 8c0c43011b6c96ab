package client

import (
	"errors"
	"fmt"
	"testing"

	sf "github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsDriverError(t *testing.T) {
	driverErr := &sf.SnowflakeError{Number: 1003, SQLState: "42000", Message: "bad sql"}

	got, ok := AsDriverError(fmt.Errorf("executing: %w", driverErr))
	require.True(t, ok)
	assert.Equal(t, 1003, got.Number)

	_, ok = AsDriverError(errors.New("plain"))
	assert.False(t, ok)

	_, ok = AsDriverError(nil)
	assert.False(t, ok)
}

func TestFormatDriverError(t *testing.T) {
	e := &sf.SnowflakeError{
		Number:   2003,
		SQLState: "42S02",
		Message:  "Object 'MISSING' does not exist",
		QueryID:  "01aa-bb",
	}
	assert.Equal(t, "Error 2003 (42S02): Object 'MISSING' does not exist (01aa-bb)", FormatDriverError(e))
}

func TestErrorClassification(t *testing.T) {
	compilation := &sf.SnowflakeError{SQLState: "42000"}
	auth := &sf.SnowflakeError{SQLState: "28000"}
	conn := &sf.SnowflakeError{SQLState: "08001"}
	data := &sf.SnowflakeError{SQLState: "22018"}

	assert.True(t, IsCompilationError(compilation))
	assert.False(t, IsCompilationError(auth))
	assert.True(t, IsAuthError(auth))
	assert.True(t, IsConnectionError(conn))
	assert.True(t, IsDataError(data))
	assert.False(t, IsDataError(errors.New("plain")))
}

func TestUsageError(t *testing.T) {
	err := NewUsageError("cursor is closed")
	assert.Equal(t, "cursor is closed", err.Error())

	var usage *UsageError
	assert.ErrorAs(t, fmt.Errorf("wrap: %w", err), &usage)
}
