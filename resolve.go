package placemap

import (
	"context"
	"time"

	"github.com/agentstation/placemap/pkg/finalize"
	"github.com/agentstation/placemap/pkg/logging"
	"github.com/agentstation/placemap/pkg/place"
)

// Resolver runs observation batches through the match, merge, and
// persist pipeline.
type Resolver interface {
	// Resolve deduplicates a batch of observations into canonical
	// entities and upserts them
	Resolve(ctx context.Context, observations []*place.Observation, opts ...ResolveOption) (*Result, error)
}

// ResolveOption configures a single Resolve call.
type ResolveOption func(*resolveOptions)

// resolveOptions holds per-call settings.
type resolveOptions struct {
	dryRun  bool
	timeout time.Duration
}

// WithDryRun merges and reports outcomes without writing to the store.
func WithDryRun() ResolveOption {
	return func(o *resolveOptions) {
		o.dryRun = true
	}
}

// WithTimeout bounds the whole resolve run. Zero means no timeout.
func WithTimeout(timeout time.Duration) ResolveOption {
	return func(o *resolveOptions) {
		o.timeout = timeout
	}
}

// Resolve deduplicates a batch of observations into canonical entities
// and upserts them. Groups that fail to merge or persist are reported
// in the result without failing the run; the returned error is non-nil
// only for context cancellation or timeout. The result is identical for
// any arrival order of the same observation set.
func (c *client) Resolve(ctx context.Context, observations []*place.Observation, opts ...ResolveOption) (*Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse options
	ropts := &resolveOptions{}
	for _, opt := range opts {
		opt(ropts)
	}

	// Step 2: Set up the run context with run id and timeout
	result := NewResult()
	result.Metadata.DryRun = ropts.dryRun
	ctx = logging.WithRun(ctx, result.RunID)
	if ropts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ropts.timeout)
		defer cancel()
	}
	logger := logging.Ctx(ctx)

	// Step 3: Drop nil observations
	batch := make([]*place.Observation, 0, len(observations))
	for _, obs := range observations {
		if obs == nil {
			continue
		}
		batch = append(batch, obs)
	}

	// Step 4: Group observations by the identity cascade
	groups, diagnostics := c.matcher.Group(batch)
	result.Diagnostics = diagnostics
	logger.Info().
		Int("observations", len(batch)).
		Int("groups", len(groups)).
		Int("excluded", len(diagnostics)).
		Bool("dry_run", ropts.dryRun).
		Msg("Grouped observations")

	// Step 5: Order, merge, and persist every group
	finalizer := c.finalizer
	if ropts.dryRun {
		finalizer = finalize.New(c.trust, c.store,
			finalize.WithConcurrency(c.options.concurrency),
			finalize.WithDryRun())
	}
	report, err := finalizer.FinalizeAll(ctx, groups)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.Entities = report.Entities()

	// Step 6: Fire hooks for persisted changes
	if !ropts.dryRun {
		c.hooks.trigger(report)
	}

	// Step 7: Assemble statistics and finish
	result.Metadata.Stats = ResultStatistics{
		ObservationsProcessed: len(batch),
		ObservationsExcluded:  len(diagnostics),
		GroupsMatched:         len(groups),
		EntitiesCreated:       report.Created(),
		EntitiesUpdated:       report.Updated(),
		EntitiesUnchanged:     report.Unchanged(),
		GroupsFailed:          report.Failed(),
	}
	result.Finalize()

	logger.Info().
		Int("entities", len(result.Entities)).
		Int("created", result.Metadata.Stats.EntitiesCreated).
		Int("updated", result.Metadata.Stats.EntitiesUpdated).
		Int("unchanged", result.Metadata.Stats.EntitiesUnchanged).
		Int("failed", result.Metadata.Stats.GroupsFailed).
		Dur("duration", result.Metadata.Duration).
		Msg("Resolve complete")

	return result, nil
}
