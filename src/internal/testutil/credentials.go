// Package testutil provides shared utilities for integration tests
package testutil

import "os"

// Test connection settings - set via environment variables
var (
	Account   = os.Getenv("SNOWFLAKE_TEST_ACCOUNT")
	User      = os.Getenv("SNOWFLAKE_TEST_USER")
	Password  = os.Getenv("SNOWFLAKE_TEST_PASSWORD")
	Database  = getEnvOrDefault("SNOWFLAKE_TEST_DATABASE", "SNOWFLAKE_SAMPLE_DATA")
	Schema    = getEnvOrDefault("SNOWFLAKE_TEST_SCHEMA", "PUBLIC")
	Warehouse = os.Getenv("SNOWFLAKE_TEST_WAREHOUSE")
	Role      = os.Getenv("SNOWFLAKE_TEST_ROLE")
)

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// HasCredentials reports whether a live warehouse is configured for this
// test run. Integration tests skip when it returns false.
func HasCredentials() bool {
	return Account != "" && User != "" && Password != ""
}

// ProfileTOML renders a connections file with one named profile built from
// the test environment, for writing into a temp directory.
func ProfileTOML(name string) string {
	out := "[" + name + "]\n" +
		"account = \"" + Account + "\"\n" +
		"user = \"" + User + "\"\n" +
		"password = \"" + Password + "\"\n" +
		"database = \"" + Database + "\"\n" +
		"schema = \"" + Schema + "\"\n"
	if Warehouse != "" {
		out += "warehouse = \"" + Warehouse + "\"\n"
	}
	if Role != "" {
		out += "role = \"" + Role + "\"\n"
	}
	return out
}
