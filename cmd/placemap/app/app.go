// Package app wires the placemap CLI together: configuration from
// flags, environment, and config files, the logger, and the shared
// client whose lifetime spans the whole command run.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/placemap"
	"github.com/agentstation/placemap/internal/config"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/store"
)

// App carries everything a command run needs: build metadata, the
// loaded configuration, the logger, and the lazily created shared
// client.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Shared client, created on first use. Shutdown clears it, so a
	// later call can open a fresh one.
	mu sync.RWMutex
	pm placemap.Placemap
}

// New creates an App with the given build metadata. Configuration is
// loaded from the environment and config files; functional options
// override pieces of it afterwards.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the release version.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit the binary was built from.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the loaded configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Placemap returns the shared client, opening the configured store and
// creating the client on first use. Safe for concurrent callers; all of
// them get the same instance.
func (a *App) Placemap() (placemap.Placemap, error) {
	a.mu.RLock()
	if a.pm != nil {
		pm := a.pm
		a.mu.RUnlock()
		return pm, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Another caller may have won the race for the write lock.
	if a.pm != nil {
		return a.pm, nil
	}

	opts, err := a.buildPlacemapOptions()
	if err != nil {
		return nil, err
	}
	pm, err := placemap.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "placemap", "", err)
	}

	a.pm = pm
	return pm, nil
}

// PlacemapWithOptions creates a client outside the shared singleton,
// for callers that need a configuration different from the app's. The
// caller owns the returned client and is responsible for closing it.
func (a *App) PlacemapWithOptions(opts ...placemap.Option) (placemap.Placemap, error) {
	pm, err := placemap.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "placemap", "with custom options", err)
	}
	return pm, nil
}

// Shutdown closes the shared client and its backing store, giving up
// when the context expires. Calling it again, or without the client
// ever created, is a no-op.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	pm := a.pm
	a.pm = nil
	a.mu.Unlock()

	if pm == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- pm.Close() }()

	select {
	case err := <-done:
		if err != nil {
			return errors.WrapResource("close", "placemap", "", err)
		}
		return nil
	case <-ctx.Done():
		return errors.WrapResource("close", "placemap", "", ctx.Err())
	}
}

// buildPlacemapOptions turns the app configuration into client options.
func (a *App) buildPlacemapOptions() ([]placemap.Option, error) {
	var opts []placemap.Option

	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	opts = append(opts, placemap.WithStore(st))

	if a.config.TrustFile != "" {
		opts = append(opts, placemap.WithTrustFile(a.config.TrustFile))
	}
	if a.config.Threshold > 0 {
		opts = append(opts, placemap.WithMatchThreshold(a.config.Threshold))
	}

	return opts, nil
}

// openStore opens the entity store from environment configuration with
// any flag or config file overrides applied on top.
func (a *App) openStore() (store.Store, error) {
	db, err := config.ReadDB()
	if err != nil {
		return nil, err
	}

	if a.config.DBDriver != "" {
		db.Driver = config.Driver(a.config.DBDriver)
	}
	if a.config.DBPath != "" {
		db.Path = config.ExpandPath(a.config.DBPath)
	}
	if a.config.DBDSN != "" {
		db.DSN = a.config.DBDSN
	}

	return db.Open()
}

// Option customizes an App during New.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger replaces the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithPlacemap seeds the shared client, bypassing store opening. Meant
// for tests and embedders that build the client themselves.
func WithPlacemap(pm placemap.Placemap) Option {
	return func(a *App) error {
		a.pm = pm
		return nil
	}
}
