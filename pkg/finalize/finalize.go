// Package finalize turns matched candidate groups into persisted
// canonical entities: order the group, merge it, derive the slug,
// disambiguate on collision with a different entity, and upsert. The
// whole pass is deterministic for a given input batch and trust table,
// and re-finalizing identical input leaves the store byte-identical.
package finalize

import (
	"context"
	"math"

	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/logging"
	"github.com/agentstation/placemap/pkg/merge"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/slug"
	"github.com/agentstation/placemap/pkg/store"
	"github.com/agentstation/placemap/pkg/trust"
)

// Option configures a Finalizer.
type Option func(*Finalizer)

// WithConcurrency sets how many groups FinalizeAll processes in
// parallel, clamped to [1, constants.MaxConcurrency].
func WithConcurrency(n int) Option {
	return func(f *Finalizer) {
		if n < 1 {
			n = 1
		}
		if n > constants.MaxConcurrency {
			n = constants.MaxConcurrency
		}
		f.concurrency = n
	}
}

// WithDryRun makes Finalize predict upsert outcomes from store reads
// without writing anything.
func WithDryRun() Option {
	return func(f *Finalizer) {
		f.dryRun = true
	}
}

// Finalizer merges candidate groups and upserts the results. Safe for
// concurrent use; upserts for the same base slug serialize on a keyed
// mutex so concurrent re-finalization cannot interleave slug probing
// with the write.
type Finalizer struct {
	trust       *trust.Model
	store       store.Store
	merger      merge.Merger
	locks       *keyedMutex
	concurrency int
	dryRun      bool
}

// New returns a Finalizer using the given trust model and store. Both
// must be non-nil.
func New(model *trust.Model, st store.Store, opts ...Option) *Finalizer {
	f := &Finalizer{
		trust:       model,
		store:       st,
		merger:      merge.NewMerger(model),
		locks:       newKeyedMutex(),
		concurrency: constants.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Finalize orders and merges one candidate group, resolves its slug,
// and upserts the merged entity. An empty group is a programming error
// in the caller and returns errors.ErrEmptyGroup.
func (f *Finalizer) Finalize(ctx context.Context, group *place.CandidateGroup) (*GroupResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if group == nil || group.Size() == 0 {
		return nil, errors.ErrEmptyGroup
	}

	ordered := merge.Order(group, f.trust)
	entity, err := f.merger.Merge(ordered)
	if err != nil {
		return nil, err
	}

	base := f.baseSlug(entity, ordered)
	f.locks.Lock(base)
	defer f.locks.Unlock(base)

	resolved, existing, err := f.resolveSlug(ctx, base, entity)
	if err != nil {
		return nil, err
	}
	entity.Slug = resolved

	outcome, err := f.upsert(ctx, entity, existing)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("slug", resolved).
		Str("outcome", string(outcome)).
		Int("observations", len(ordered)).
		Bool("dry_run", f.dryRun).
		Msg("Finalized candidate group")

	return &GroupResult{Slug: resolved, Outcome: outcome, Entity: entity}, nil
}

// baseSlug derives the upsert key from the merged name. Groups built by
// the matcher always carry a name; should a nameless entity arrive
// anyway, the strongest member's identity keeps the key stable.
func (f *Finalizer) baseSlug(entity *place.CanonicalEntity, ordered []*place.Observation) string {
	if s := slug.Make(entity.Name); s != "" {
		return s
	}
	head := ordered[0]
	if !place.MissingString(head.ExternalID) {
		return slug.Make(string(head.ConnectorID) + " " + head.ExternalID)
	}
	return slug.Make(string(head.ConnectorID) + " " + head.ID)
}

// resolveSlug walks base, base-2, base-3, ... until it finds either a
// free slug or one held by the same entity. It returns the stored
// entity when the slug is already taken by this venue, so the upsert
// can be predicted in dry runs.
func (f *Finalizer) resolveSlug(ctx context.Context, base string, entity *place.CanonicalEntity) (string, *place.CanonicalEntity, error) {
	for n := 1; ; n++ {
		candidate := slug.Disambiguate(base, n)
		existing, err := f.store.Get(ctx, candidate)
		if err != nil {
			if errors.IsNotFound(err) {
				return candidate, nil, nil
			}
			return "", nil, err
		}
		if sameEntity(existing, entity) {
			return candidate, existing, nil
		}
		logging.Ctx(ctx).Info().
			Str("slug", candidate).
			Str("name", entity.Name).
			Msg("Slug held by a different entity, disambiguating")
	}
}

// upsert writes the entity, or in dry runs predicts the outcome from
// the entity fetched during slug resolution.
func (f *Finalizer) upsert(ctx context.Context, entity, existing *place.CanonicalEntity) (store.Outcome, error) {
	if !f.dryRun {
		return f.store.Upsert(ctx, entity)
	}
	switch {
	case existing == nil:
		return store.OutcomeCreated, nil
	case existing.ContentHash() == entity.ContentHash():
		return store.OutcomeUnchanged, nil
	default:
		return store.OutcomeUpdated, nil
	}
}

// sameEntity reports whether a stored entity and a freshly merged one
// describe the same real-world venue. Slug collisions between same-name
// venues are told apart by external ids first, then coordinates at the
// grouping precision; when neither side carries coordinates the class
// fingerprint decides, mirroring the matcher's identity cascade.
func sameEntity(a, b *place.CanonicalEntity) bool {
	for connector, ids := range a.ExternalIDs {
		others := b.ExternalIDs[connector]
		if len(others) == 0 {
			continue
		}
		seen := make(map[string]struct{}, len(others))
		for _, id := range others {
			seen[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				return true
			}
		}
	}

	if a.Latitude != nil && a.Longitude != nil && b.Latitude != nil && b.Longitude != nil {
		return sameCoord(*a.Latitude, *b.Latitude) && sameCoord(*a.Longitude, *b.Longitude)
	}
	return a.EntityClass == b.EntityClass
}

// sameCoord compares coordinates rounded to the grouping precision,
// the same equivalence the matcher's geo tier uses.
func sameCoord(a, b float64) bool {
	scale := math.Pow10(constants.DefaultGeoPrecision)
	return math.Round(a*scale) == math.Round(b*scale)
}
