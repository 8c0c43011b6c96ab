package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5*time.Minute, cfg.StatementTimeout)
	assert.Equal(t, 10, cfg.Pool.MaxOpenConns)
	assert.Equal(t, 2, cfg.Pool.MaxIdleConns)
	assert.NotNil(t, cfg.Observability)
	assert.NotNil(t, cfg.Logging)
}

func TestSessionParamsFlattening(t *testing.T) {
	cfg := &Config{
		QueryTag:         "nightly-load",
		StatementTimeout: 90 * time.Second,
	}

	params := cfg.sessionParams()
	assert.Equal(t, "nightly-load", params["QUERY_TAG"])
	assert.Equal(t, "90", params["STATEMENT_TIMEOUT_IN_SECONDS"])
}

func TestSessionParamsExplicitWins(t *testing.T) {
	cfg := &Config{
		QueryTag: "from-field",
		SessionParams: map[string]string{
			"QUERY_TAG": "from-map",
			"TIMEZONE":  "UTC",
		},
	}

	params := cfg.sessionParams()
	assert.Equal(t, "from-map", params["QUERY_TAG"])
	assert.Equal(t, "UTC", params["TIMEZONE"])
}

func TestSessionParamsZeroTimeoutOmitted(t *testing.T) {
	params := (&Config{}).sessionParams()
	_, ok := params["STATEMENT_TIMEOUT_IN_SECONDS"]
	assert.False(t, ok)
}
