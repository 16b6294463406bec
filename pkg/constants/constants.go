// Package constants provides shared constants used throughout the placemap
// codebase: matching thresholds, worker limits, file permissions, and
// default paths.
package constants

import "time"

// Matching constants define the defaults for observation grouping
const (
	// DefaultSimilarityThreshold is the minimum name similarity score (0-100)
	// for two observations to be grouped by fuzzy name matching
	DefaultSimilarityThreshold = 85

	// DefaultGeoPrecision is the number of decimal places coordinates are
	// rounded to when building geographic proximity keys
	DefaultGeoPrecision = 4
)

// Concurrency constants define worker limits for batch operations
const (
	// DefaultConcurrency is the default number of candidate groups finalized in parallel
	DefaultConcurrency = 4

	// MaxConcurrency is the upper bound on parallel group finalization
	MaxConcurrency = 32
)

// DefaultTimeout bounds short operations with no caller-supplied
// deadline, such as the connectivity check when a store opens.
const DefaultTimeout = 10 * time.Second

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define sizes the pipeline refuses or clamps
const (
	// MaxNameLength is the maximum accepted length for an observed place
	// name; anything longer is treated as extraction garbage
	MaxNameLength = 256

	// MaxSlugLength is the maximum length of a generated entity slug
	MaxSlugLength = 80

	// DefaultPageSize is the default number of entities per page for listings
	DefaultPageSize = 100

	// MaxPageSize is the maximum allowed page size for listings
	MaxPageSize = 1000
)

// DefaultDatabasePath is the default location of the sqlite entity
// store, inside the placemap dot directory.
const DefaultDatabasePath = "~/.placemap/placemap.db"
