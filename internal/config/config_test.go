package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/ytagent/pkg/oauth"
)

const clientJSON = `{"web":{"client_id":"json-id.apps.googleusercontent.com","client_secret":"json-secret",` +
	`"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token",` +
	`"redirect_uris":["http://localhost:8080/auth/callback"]}}`

// isolate points the config dir at an empty temp dir and clears YTAGENT_*
// variables inherited from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"YTAGENT_CLIENT_ID", "YTAGENT_CLIENT_SECRET", "YTAGENT_CLIENT_SECRET_JSON",
		"YTAGENT_REDIRECT_URL", "YTAGENT_AUTH_URL", "YTAGENT_TOKEN_URL", "YTAGENT_SCOPE",
		"YTAGENT_REFRESH_TOKEN", "YTAGENT_TOKEN_STORE", "YTAGENT_API_URL",
		"YTAGENT_REQUEST_TIMEOUT", "YTAGENT_RATE_LIMIT", "YTAGENT_SEARCH_WORKERS",
		"YTAGENT_HTTP_ADDR", "YTAGENT_LOG_LEVEL", "YTAGENT_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("YTAGENT_CONFIG_DIR", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, oauth.DefaultRedirectURL, cfg.Client.RedirectURL)
	assert.Equal(t, "full", cfg.Client.Scope)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "https://youtube.googleapis.com/", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.RateLimit)
	assert.Equal(t, 3, cfg.Recommend.Workers)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)

	timeout, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	content := `
[client]
id = "file-id"
secret = "file-secret"
scope = "readonly"

[storage]
driver = "sqlite"

[api]
timeout = "5s"
rate_limit = 2

[server]
addr = ":9000"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))
	t.Setenv("YTAGENT_CLIENT_ID", "env-id")
	t.Setenv("YTAGENT_RATE_LIMIT", "9")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Client.ID, "environment should override the file")
	assert.Equal(t, "file-secret", cfg.Client.Secret)
	assert.Equal(t, "readonly", cfg.Client.Scope)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 9, cfg.API.RateLimit)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, filepath.Join(dir, "credentials.db"), cfg.SQLitePath())
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTOML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[client\nid = "), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_InvalidIntegerEnv(t *testing.T) {
	isolate(t)
	t.Setenv("YTAGENT_SEARCH_WORKERS", "many")

	_, err := Load("")
	assert.ErrorContains(t, err, "YTAGENT_SEARCH_WORKERS")
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("YTAGENT_CLIENT_ID=from-dotenv\nYTAGENT_HTTP_ADDR=:7000\n"), 0o600))
	t.Setenv("YTAGENT_CLIENT_ID", "from-env")
	os.Unsetenv("YTAGENT_HTTP_ADDR")
	t.Cleanup(func() { os.Unsetenv("YTAGENT_HTTP_ADDR") })

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "from-env", os.Getenv("YTAGENT_CLIENT_ID"))
	assert.Equal(t, ":7000", os.Getenv("YTAGENT_HTTP_ADDR"))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestIdentity_FromIDAndSecret(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Client.ID = "id"
	cfg.Client.Secret = "secret"
	cfg.Client.TokenURL = "http://127.0.0.1:9999/token"

	id, err := cfg.Identity()
	require.NoError(t, err)

	assert.Equal(t, "id", id.ClientID)
	assert.Equal(t, "http://127.0.0.1:9999/token", id.TokenURL)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth", id.AuthURL)
	assert.Equal(t, oauth.DefaultRedirectURL, id.RedirectURL)
}

func TestIdentity_FromInlineJSON(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Client.SecretJSON = clientJSON
	cfg.Client.RedirectURL = "http://localhost:9090/auth/callback"

	id, err := cfg.Identity()
	require.NoError(t, err)

	assert.Equal(t, "json-id.apps.googleusercontent.com", id.ClientID)
	assert.Equal(t, "json-secret", id.ClientSecret)
	assert.Equal(t, "http://localhost:9090/auth/callback", id.RedirectURL)
}

func TestIdentity_FromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path, []byte(clientJSON), 0o600))
	cfg := NewDefaultConfig()
	cfg.Client.SecretJSON = path

	id, err := cfg.Identity()
	require.NoError(t, err)
	assert.Equal(t, "json-secret", id.ClientSecret)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := NewDefaultConfig()
		cfg.Client.ID = "id"
		cfg.Client.Secret = "secret"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing client", func(c *Config) { c.Client.ID = "" }, "missing OAuth client"},
		{"unknown scope", func(c *Config) { c.Client.Scope = "admin" }, "unknown scope"},
		{"unknown store", func(c *Config) { c.Storage.Driver = "redis" }, "unknown token store"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "invalid api timeout"},
		{"negative timeout", func(c *Config) { c.API.Timeout = "-1s" }, "must be positive"},
		{"zero rate", func(c *Config) { c.API.RateLimit = 0 }, "rate limit"},
		{"zero workers", func(c *Config) { c.Recommend.Workers = 0 }, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestResolve_ReturnsParsedSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client_secret.json")
	require.NoError(t, os.WriteFile(path, []byte(clientJSON), 0o600))
	cfg := NewDefaultConfig()
	cfg.Client.SecretJSON = path
	cfg.Client.Scope = "readonly"
	cfg.API.Timeout = "3s"

	settings, err := cfg.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "json-id.apps.googleusercontent.com", settings.Identity.ClientID)
	assert.Equal(t, oauth.ScopeReadOnly, settings.Scope)
	assert.Equal(t, 3*time.Second, settings.Timeout)

	// The file is read once; the settings do not depend on it afterwards.
	require.NoError(t, os.Remove(path))
	assert.Equal(t, "json-secret", settings.Identity.ClientSecret)
	_, err = cfg.Resolve()
	assert.ErrorContains(t, err, "failed to read client secret JSON")
}
