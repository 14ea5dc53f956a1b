// Package config loads ytagent settings from defaults, an optional TOML file
// and YTAGENT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/gauthierbraillon/ytagent/pkg/oauth"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

const (
	fileName       = "config.toml"
	sqliteFileName = "credentials.db"
)

// Config holds all configuration for ytagent.
type Config struct {
	ConfigDir string          `toml:"config_dir"`
	Client    ClientConfig    `toml:"client"`
	Storage   StorageConfig   `toml:"storage"`
	API       APIConfig       `toml:"api"`
	Recommend RecommendConfig `toml:"recommend"`
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ClientConfig identifies the OAuth client and the credential to start from.
type ClientConfig struct {
	ID           string `toml:"id"`
	Secret       string `toml:"secret"`      // #nosec G117 - OAuth client config, not an exposed secret
	SecretJSON   string `toml:"secret_json"` // inline client JSON or a path to it
	RedirectURL  string `toml:"redirect_url"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
	Scope        string `toml:"scope"`
	RefreshToken string `toml:"refresh_token"` // #nosec G117 - OAuth token config, not an exposed secret
}

// StorageConfig selects the credential snapshot store.
type StorageConfig struct {
	Driver string `toml:"driver"`
}

// APIConfig configures calls to the YouTube Data API.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
}

// RecommendConfig configures the recommendation pipeline.
type RecommendConfig struct {
	Workers int `toml:"workers"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ConfigDir: defaultConfigDir(),
		Client: ClientConfig{
			RedirectURL: oauth.DefaultRedirectURL,
			Scope:       oauth.ScopeFullAccess.String(),
		},
		Storage: StorageConfig{Driver: DriverFile},
		API: APIConfig{
			BaseURL:   "https://youtube.googleapis.com/",
			Timeout:   "15s",
			RateLimit: 5,
		},
		Recommend: RecommendConfig{Workers: 3},
		Server:    ServerConfig{Addr: ":8080"},
		Logging:   LoggingConfig{Level: "info", Format: "auto"},
	}
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ytagent"
	}
	return filepath.Join(home, ".config", "ytagent")
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load builds the configuration. An empty path means <config_dir>/config.toml,
// which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	config := NewDefaultConfig()
	if dir := os.Getenv("YTAGENT_CONFIG_DIR"); dir != "" {
		config.ConfigDir = dir
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(config.ConfigDir, fileName)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) error {
	strs := map[string]*string{
		"YTAGENT_CONFIG_DIR":         &config.ConfigDir,
		"YTAGENT_CLIENT_ID":          &config.Client.ID,
		"YTAGENT_CLIENT_SECRET":      &config.Client.Secret,
		"YTAGENT_CLIENT_SECRET_JSON": &config.Client.SecretJSON,
		"YTAGENT_REDIRECT_URL":       &config.Client.RedirectURL,
		"YTAGENT_AUTH_URL":           &config.Client.AuthURL,
		"YTAGENT_TOKEN_URL":          &config.Client.TokenURL,
		"YTAGENT_SCOPE":              &config.Client.Scope,
		"YTAGENT_REFRESH_TOKEN":      &config.Client.RefreshToken,
		"YTAGENT_TOKEN_STORE":        &config.Storage.Driver,
		"YTAGENT_API_URL":            &config.API.BaseURL,
		"YTAGENT_REQUEST_TIMEOUT":    &config.API.Timeout,
		"YTAGENT_HTTP_ADDR":          &config.Server.Addr,
		"YTAGENT_LOG_LEVEL":          &config.Logging.Level,
		"YTAGENT_LOG_FORMAT":         &config.Logging.Format,
	}
	for key, field := range strs {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}

	ints := map[string]*int{
		"YTAGENT_RATE_LIMIT":     &config.API.RateLimit,
		"YTAGENT_SEARCH_WORKERS": &config.Recommend.Workers,
	}
	for key, field := range ints {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*field = n
	}
	return nil
}

// Settings are the parsed values a process is wired from.
type Settings struct {
	Identity oauth.ClientIdentity
	Scope    oauth.Scope
	Timeout  time.Duration
}

// Validate reports the first setting that prevents startup.
func (c *Config) Validate() error {
	_, err := c.Resolve()
	return err
}

// Resolve validates the configuration and returns the parsed settings. The
// client secret JSON file is read once, here.
func (c *Config) Resolve() (Settings, error) {
	identity, err := c.Identity()
	if err != nil {
		return Settings{}, err
	}
	scope, err := c.Scope()
	if err != nil {
		return Settings{}, err
	}
	if c.Storage.Driver != DriverFile && c.Storage.Driver != DriverSQLite {
		return Settings{}, fmt.Errorf("unknown token store %q: must be %q or %q", c.Storage.Driver, DriverFile, DriverSQLite)
	}
	timeout, err := c.RequestTimeout()
	if err != nil {
		return Settings{}, err
	}
	if c.API.RateLimit <= 0 {
		return Settings{}, fmt.Errorf("api rate limit must be positive, got %d", c.API.RateLimit)
	}
	if c.Recommend.Workers <= 0 {
		return Settings{}, fmt.Errorf("recommend workers must be positive, got %d", c.Recommend.Workers)
	}
	return Settings{Identity: identity, Scope: scope, Timeout: timeout}, nil
}

// Identity builds the OAuth client identity. Client JSON, when given, wins
// over the separate id and secret.
func (c *Config) Identity() (oauth.ClientIdentity, error) {
	var id oauth.ClientIdentity
	if raw := strings.TrimSpace(c.Client.SecretJSON); raw != "" {
		data := []byte(raw)
		if !strings.HasPrefix(raw, "{") {
			var err error
			data, err = os.ReadFile(raw) // #nosec G304 -- path is chosen by the operator
			if err != nil {
				return oauth.ClientIdentity{}, fmt.Errorf("failed to read client secret JSON: %w", err)
			}
		}
		parsed, err := oauth.IdentityFromJSON(data, c.Client.RedirectURL)
		if err != nil {
			return oauth.ClientIdentity{}, err
		}
		id = parsed
	} else {
		if c.Client.ID == "" || c.Client.Secret == "" {
			return oauth.ClientIdentity{}, errors.New(
				"missing OAuth client: set YTAGENT_CLIENT_ID and YTAGENT_CLIENT_SECRET, or YTAGENT_CLIENT_SECRET_JSON")
		}
		id = oauth.YouTubeIdentity(c.Client.ID, c.Client.Secret, c.Client.RedirectURL)
	}

	if c.Client.AuthURL != "" {
		id.AuthURL = c.Client.AuthURL
	}
	if c.Client.TokenURL != "" {
		id.TokenURL = c.Client.TokenURL
	}
	if err := id.Validate(); err != nil {
		return oauth.ClientIdentity{}, err
	}
	return id, nil
}

// Scope parses the configured scope.
func (c *Config) Scope() (oauth.Scope, error) {
	return oauth.ParseScope(c.Client.Scope)
}

// RequestTimeout parses the configured per-call timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid api timeout %q: %w", c.API.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("api timeout must be positive, got %s", d)
	}
	return d, nil
}

// SQLitePath is the database file used by the sqlite store driver.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.ConfigDir, sqliteFileName)
}
