// Package profile resolves named Snowflake connection profiles from a
// connections.toml file, layered with environment overrides.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	sf "github.com/snowflakedb/gosnowflake"
)

// Environment variables recognized as overrides and defaults.
const (
	EnvHome        = "SNOWFLAKE_HOME"
	EnvDefaultName = "SNOWFLAKE_DEFAULT_CONNECTION_NAME"

	envAccount   = "SNOWFLAKE_ACCOUNT"
	envUser      = "SNOWFLAKE_USER"
	envPassword  = "SNOWFLAKE_PASSWORD"
	envDatabase  = "SNOWFLAKE_DATABASE"
	envSchema    = "SNOWFLAKE_SCHEMA"
	envWarehouse = "SNOWFLAKE_WAREHOUSE"
	envRole      = "SNOWFLAKE_ROLE"
	envToken     = "SNOWFLAKE_TOKEN"
)

// DefaultName is used when neither the caller nor the environment names a profile.
const DefaultName = "default"

// Profile is one named credential/configuration bundle from connections.toml.
type Profile struct {
	Account       string            `toml:"account"`
	User          string            `toml:"user"`
	Password      string            `toml:"password"`
	Host          string            `toml:"host"`
	Port          int               `toml:"port"`
	Database      string            `toml:"database"`
	Schema        string            `toml:"schema"`
	Warehouse     string            `toml:"warehouse"`
	Role          string            `toml:"role"`
	Authenticator string            `toml:"authenticator"`
	Token         string            `toml:"token"`
	Params        map[string]string `toml:"params"`
}

// Address returns the host:port pair the profile points at, or the account
// identifier when no explicit host is configured.
func (p *Profile) Address() string {
	if p.Host == "" {
		return p.Account
	}
	port := p.Port
	if port == 0 {
		port = 443
	}
	return fmt.Sprintf("%s:%d", p.Host, port)
}

// Config converts the profile into a driver configuration. Free-form params
// are forwarded verbatim.
func (p *Profile) Config() (*sf.Config, error) {
	if p.Account == "" && p.Host == "" {
		return nil, fmt.Errorf("profile has neither account nor host")
	}

	cfg := &sf.Config{
		Account:   p.Account,
		User:      p.User,
		Password:  p.Password,
		Host:      p.Host,
		Port:      p.Port,
		Database:  p.Database,
		Schema:    p.Schema,
		Warehouse: p.Warehouse,
		Role:      p.Role,
		Token:     p.Token,
		Params:    map[string]*string{},
	}

	switch p.Authenticator {
	case "", "snowflake":
		cfg.Authenticator = sf.AuthTypeSnowflake
	case "oauth":
		cfg.Authenticator = sf.AuthTypeOAuth
	case "externalbrowser":
		cfg.Authenticator = sf.AuthTypeExternalBrowser
	default:
		return nil, fmt.Errorf("unsupported authenticator %q", p.Authenticator)
	}

	for k, v := range p.Params {
		val := v
		cfg.Params[k] = &val
	}

	return cfg, nil
}

// Resolver loads connections.toml once and answers profile lookups.
type Resolver struct {
	path     string
	profiles map[string]Profile
}

// DefaultPath returns the connections.toml location: $SNOWFLAKE_HOME when
// set, otherwise ~/.snowflake.
func DefaultPath() string {
	if home := os.Getenv(EnvHome); home != "" {
		return filepath.Join(home, "connections.toml")
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "connections.toml"
	}
	return filepath.Join(userHome, ".snowflake", "connections.toml")
}

// NewResolver parses the connections.toml at path. An empty path means
// DefaultPath(). A .env file next to the working directory is loaded first so
// that environment overrides can live there.
func NewResolver(path string) (*Resolver, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read connection profiles %s: %w", path, err)
	}

	profiles := map[string]Profile{}
	if err := toml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse connection profiles %s: %w", path, err)
	}

	return &Resolver{path: path, profiles: profiles}, nil
}

// Path returns the file the resolver was loaded from.
func (r *Resolver) Path() string {
	return r.path
}

// Names returns the profile names present in the file.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	return names
}

// Resolve looks up a profile by name and applies environment overrides. An
// empty name falls back to $SNOWFLAKE_DEFAULT_CONNECTION_NAME, then "default".
func (r *Resolver) Resolve(name string) (*Profile, error) {
	if name == "" {
		name = os.Getenv(EnvDefaultName)
	}
	if name == "" {
		name = DefaultName
	}

	p, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("connection profile %q not found in %s", name, r.path)
	}

	applyEnvOverrides(&p)
	return &p, nil
}

func applyEnvOverrides(p *Profile) {
	setIfEnv(&p.Account, envAccount)
	setIfEnv(&p.User, envUser)
	setIfEnv(&p.Password, envPassword)
	setIfEnv(&p.Database, envDatabase)
	setIfEnv(&p.Schema, envSchema)
	setIfEnv(&p.Warehouse, envWarehouse)
	setIfEnv(&p.Role, envRole)
	setIfEnv(&p.Token, envToken)
	if port := os.Getenv("SNOWFLAKE_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			p.Port = n
		}
	}
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
