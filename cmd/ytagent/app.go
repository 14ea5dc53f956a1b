package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gauthierbraillon/ytagent/internal/config"
	"github.com/gauthierbraillon/ytagent/internal/display"
	"github.com/gauthierbraillon/ytagent/internal/logging"
	"github.com/gauthierbraillon/ytagent/internal/recommend"
	"github.com/gauthierbraillon/ytagent/internal/youtube"
	"github.com/gauthierbraillon/ytagent/pkg/oauth"
)

// app is the wired process: one authority, one client and one pipeline.
type app struct {
	cfg       *config.Config
	settings  config.Settings
	logger    *logging.Logger
	store     oauth.Store
	authority *oauth.Authority
	client    *youtube.Client
	pipeline  *recommend.Pipeline
	formatter *display.TerminalFormatter
	closers   []io.Closer
}

// loadConfig resolves .env, the TOML file and the environment.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *logging.Logger {
	if f, ok := w.(*os.File); ok && f == os.Stderr {
		return logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	return logging.NewWithOutput(cfg.Logging.Level, w)
}

// newApp wires every component from configuration. A missing client
// identity is fatal.
func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		settings:  settings,
		logger:    newLogger(cfg, cmd.ErrOrStderr()),
		formatter: display.NewTerminalFormatter(),
	}

	if err := a.openStore(); err != nil {
		return nil, err
	}

	timeout := settings.Timeout

	a.authority, err = oauth.NewAuthority(cmd.Context(), settings.Identity,
		oauth.WithStore(a.store),
		oauth.WithRefreshToken(cfg.Client.RefreshToken),
		oauth.WithTimeout(timeout),
		oauth.WithLogger(a.logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.client = youtube.NewClient(a.authority,
		youtube.WithBaseURL(cfg.API.BaseURL),
		youtube.WithTimeout(timeout),
		youtube.WithRateLimit(cfg.API.RateLimit),
		youtube.WithLogger(a.logger),
	)
	a.pipeline = recommend.New(a.client,
		recommend.WithWorkers(cfg.Recommend.Workers),
		recommend.WithLogger(a.logger),
	)

	return a, nil
}

func (a *app) openStore() error {
	switch a.cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := oauth.OpenSQLiteStore(a.cfg.SQLitePath())
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, store)
	default:
		a.store = oauth.NewFileStore(a.cfg.ConfigDir)
	}
	return nil
}

// storeLocation describes where the snapshot lives.
func (a *app) storeLocation() string {
	if fs, ok := a.store.(*oauth.FileStore); ok {
		return fs.Path()
	}
	return a.cfg.SQLitePath()
}

// Close releases the credential store.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close resource")
		}
	}
}

// withApp runs fn with a wired app and closes it afterwards.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}
