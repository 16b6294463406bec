package placemap

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/placemap/pkg/finalize"
	"github.com/agentstation/placemap/pkg/match"
	"github.com/agentstation/placemap/pkg/place"
)

// Result represents the outcome of one resolve run.
type Result struct {
	// RunID uniquely identifies the run in logs and reports
	RunID string

	// Entities are the successfully finalized canonical entities in
	// group order
	Entities []*place.CanonicalEntity

	// Report holds the per-group finalization outcomes
	Report *finalize.Report

	// Diagnostics lists observations excluded from grouping
	Diagnostics []match.Diagnostic

	// Metadata about the run
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the resolve run.
type ResultMetadata struct {
	// StartTime when the run started
	StartTime time.Time

	// EndTime when the run completed
	EndTime time.Time

	// Duration of the run
	Duration time.Duration

	// DryRun indicates nothing was written to the store
	DryRun bool

	// Stats about the run
	Stats ResultStatistics
}

// ResultStatistics counts the work a resolve run did.
type ResultStatistics struct {
	ObservationsProcessed int
	ObservationsExcluded  int
	GroupsMatched         int
	EntitiesCreated       int
	EntitiesUpdated       int
	EntitiesUnchanged     int
	GroupsFailed          int
}

// NewResult creates a new result with a fresh run id.
func NewResult() *Result {
	return &Result{
		RunID: uuid.NewString(),
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// IsSuccess returns true if every group finalized.
func (r *Result) IsSuccess() bool {
	return r.Report == nil || r.Report.Failed() == 0
}

// Finalize stamps the end time and computes the run duration.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	switch {
	case !r.IsSuccess():
		return fmt.Sprintf("Resolve completed with %d failed groups (%d created, %d updated, %d unchanged)",
			s.GroupsFailed, s.EntitiesCreated, s.EntitiesUpdated, s.EntitiesUnchanged)
	case r.Metadata.DryRun:
		return fmt.Sprintf("Dry run: %d observations in %d groups (%d would be created, %d updated, %d unchanged)",
			s.ObservationsProcessed, s.GroupsMatched, s.EntitiesCreated, s.EntitiesUpdated, s.EntitiesUnchanged)
	default:
		return fmt.Sprintf("Resolved %d observations into %d entities (%d created, %d updated, %d unchanged)",
			s.ObservationsProcessed, s.GroupsMatched, s.EntitiesCreated, s.EntitiesUpdated, s.EntitiesUnchanged)
	}
}
