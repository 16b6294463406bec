// Package config loads placemap configuration from the environment and
// opens the persistence backend it selects.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/store"
	"github.com/agentstation/placemap/pkg/store/memory"
	"github.com/agentstation/placemap/pkg/store/postgres"
	"github.com/agentstation/placemap/pkg/store/sqlite"
)

// Driver names a persistence backend.
type Driver string

// Supported persistence backends.
const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// DB selects and parameterizes the persistence backend. Values come
// from PLACEMAP_DB_* environment variables.
type DB struct {
	Driver Driver `env:"PLACEMAP_DB_DRIVER" envDefault:"sqlite"`
	Path   string `env:"PLACEMAP_DB_PATH"`
	DSN    string `env:"PLACEMAP_DB_DSN"`
}

// LoadDB reads the database configuration from the environment. An
// unset path falls back to the default database location with ~
// expanded.
func LoadDB() (*DB, error) {
	cfg, err := ReadDB()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadDB parses the environment without validating, for callers that
// layer flag or config-file overrides on top before opening.
func ReadDB() (*DB, error) {
	cfg := &DB{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapParse("env", "database configuration", err)
	}
	if cfg.Path == "" {
		cfg.Path = constants.DefaultDatabasePath
	}
	cfg.Path = ExpandPath(cfg.Path)
	return cfg, nil
}

// Validate checks the driver selection and its required parameters.
func (d *DB) Validate() error {
	switch d.Driver {
	case DriverMemory, DriverSQLite:
		return nil
	case DriverPostgres:
		if d.DSN == "" {
			return errors.NewValidationError("PLACEMAP_DB_DSN", "", "required for the postgres driver")
		}
		return nil
	default:
		return errors.NewValidationError("PLACEMAP_DB_DRIVER", string(d.Driver), "must be memory, sqlite, or postgres")
	}
}

// Open opens the configured store.
func (d *DB) Open() (store.Store, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	switch d.Driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.Open(d.Path)
	default:
		return postgres.Open(d.DSN)
	}
}

// ExpandPath expands a path that may contain ~ to the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
