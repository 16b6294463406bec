package finalize

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/placemap/pkg/logging"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/store"
)

// GroupResult reports one group's finalization. Either Entity is set
// and Err is nil, or the group failed and only Err is set.
type GroupResult struct {
	Slug    string                 `json:"slug,omitempty" yaml:"slug,omitempty"`
	Outcome store.Outcome          `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Entity  *place.CanonicalEntity `json:"entity,omitempty" yaml:"entity,omitempty"`
	Err     error                  `json:"-" yaml:"-"`
}

// Report collects per-group results in input order.
type Report struct {
	Results []*GroupResult `json:"results" yaml:"results"`
}

// Created counts groups whose entity was newly persisted.
func (r *Report) Created() int { return r.count(store.OutcomeCreated) }

// Updated counts groups whose stored entity changed content.
func (r *Report) Updated() int { return r.count(store.OutcomeUpdated) }

// Unchanged counts groups whose stored entity was already identical.
func (r *Report) Unchanged() int { return r.count(store.OutcomeUnchanged) }

// Failed counts groups that did not finalize.
func (r *Report) Failed() int {
	n := 0
	for _, result := range r.Results {
		if result.Err != nil {
			n++
		}
	}
	return n
}

// Entities returns the successfully finalized entities in input order.
func (r *Report) Entities() []*place.CanonicalEntity {
	entities := make([]*place.CanonicalEntity, 0, len(r.Results))
	for _, result := range r.Results {
		if result.Err == nil && result.Entity != nil {
			entities = append(entities, result.Entity)
		}
	}
	return entities
}

func (r *Report) count(outcome store.Outcome) int {
	n := 0
	for _, result := range r.Results {
		if result.Err == nil && result.Outcome == outcome {
			n++
		}
	}
	return n
}

// FinalizeAll finalizes every group with bounded concurrency and
// returns one result per group in input order. A group that fails to
// merge or persist records its error in the report without stopping the
// other groups; only context cancellation aborts the batch, and the
// returned error is then the context's.
func (f *Finalizer) FinalizeAll(ctx context.Context, groups []*place.CandidateGroup) (*Report, error) {
	report := &Report{Results: make([]*GroupResult, len(groups))}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.concurrency)
	for i, group := range groups {
		i, group := i, group
		eg.Go(func() error {
			gctx := logging.WithGroup(egctx, i)
			result, err := f.Finalize(gctx, group)
			if err != nil {
				if egctx.Err() != nil {
					report.Results[i] = &GroupResult{Err: egctx.Err()}
					return egctx.Err()
				}
				logging.Ctx(gctx).Error().
					Err(err).
					Msg("Failed to finalize candidate group")
				report.Results[i] = &GroupResult{Err: err}
				return nil
			}
			report.Results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report, err
	}

	logging.Ctx(ctx).Info().
		Int("groups", len(groups)).
		Int("created", report.Created()).
		Int("updated", report.Updated()).
		Int("unchanged", report.Unchanged()).
		Int("failed", report.Failed()).
		Msg("Finalized candidate groups")

	return report, nil
}
