package profile

import (
	"os"
	"path/filepath"
	"testing"

	sf "github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleToml = `
[default]
account = "myorg-myaccount"
user = "alice"
password = "secret"
database = "demo_db"
warehouse = "compute_wh"

[dev]
account = "myorg-devaccount"
user = "bob"
password = "hunter2"
role = "developer"

[dev.params]
QUERY_TAG = "dev-box"

[local]
host = "localhost"
port = 8085
account = "local"
user = "test"
password = "test"
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "connections.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleToml), 0o600))
	return path
}

func TestResolveNamedProfile(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)

	p, err := r.Resolve("dev")
	require.NoError(t, err)
	assert.Equal(t, "myorg-devaccount", p.Account)
	assert.Equal(t, "bob", p.User)
	assert.Equal(t, "developer", p.Role)
	assert.Equal(t, "dev-box", p.Params["QUERY_TAG"])
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)

	t.Setenv(EnvDefaultName, "")
	p, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.User)
}

func TestResolveHonorsDefaultNameEnv(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)

	t.Setenv(EnvDefaultName, "dev")
	p, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "bob", p.User)
}

func TestResolveUnknownProfile(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)

	_, err = r.Resolve("prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"prod"`)
	assert.Contains(t, err.Error(), r.Path())
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)

	t.Setenv("SNOWFLAKE_PASSWORD", "rotated")
	t.Setenv("SNOWFLAKE_WAREHOUSE", "etl_wh")
	p, err := r.Resolve("dev")
	require.NoError(t, err)
	assert.Equal(t, "rotated", p.Password)
	assert.Equal(t, "etl_wh", p.Warehouse)
}

func TestMissingFile(t *testing.T) {
	_, err := NewResolver(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestDefaultPathUsesSnowflakeHome(t *testing.T) {
	t.Setenv(EnvHome, "/opt/sfhome")
	assert.Equal(t, filepath.Join("/opt/sfhome", "connections.toml"), DefaultPath())
}

func TestProfileConfig(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)

	p, err := r.Resolve("dev")
	require.NoError(t, err)

	cfg, err := p.Config()
	require.NoError(t, err)
	assert.Equal(t, "myorg-devaccount", cfg.Account)
	assert.Equal(t, sf.AuthTypeSnowflake, cfg.Authenticator)
	require.Contains(t, cfg.Params, "QUERY_TAG")
	assert.Equal(t, "dev-box", *cfg.Params["QUERY_TAG"])
}

func TestProfileConfigRejectsUnknownAuthenticator(t *testing.T) {
	p := &Profile{Account: "acct", Authenticator: "kerberos"}
	_, err := p.Config()
	require.Error(t, err)
}

func TestAddress(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)

	p, err := r.Resolve("local")
	require.NoError(t, err)
	assert.Equal(t, "localhost:8085", p.Address())

	p, err = r.Resolve("dev")
	require.NoError(t, err)
	assert.Equal(t, "myorg-devaccount", p.Address())
}

func TestNames(t *testing.T) {
	r, err := NewResolver(writeSample(t))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "dev", "local"}, r.Names())
}
