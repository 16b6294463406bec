// Package store defines the persistence contract for canonical entities.
// Implementations live in subpackages (memory, sqlite, postgres) and are
// interchangeable behind the Store interface; the finalizer and the CLI
// depend only on this package.
package store

import (
	"context"

	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/place"
)

// Outcome reports what an upsert actually did, which makes idempotent
// re-finalization observable: finalizing byte-identical input twice
// yields created then unchanged.
type Outcome string

// Upsert outcomes
const (
	// OutcomeCreated means no entity existed under the slug and a new
	// record was written.
	OutcomeCreated Outcome = "created"

	// OutcomeUpdated means an entity existed and its content changed.
	OutcomeUpdated Outcome = "updated"

	// OutcomeUnchanged means an entity existed with identical content
	// and no write was performed.
	OutcomeUnchanged Outcome = "unchanged"
)

// Page is one page of a slug-ordered entity listing. NextPageToken is
// empty on the last page; otherwise pass it to the next List call.
type Page struct {
	Entities      []*place.CanonicalEntity
	NextPageToken string
}

// Store persists canonical entities keyed by slug. Implementations must
// keep a single entity's upsert atomic: partial field writes are never
// observable, even under concurrent re-finalization of the same slug.
type Store interface {
	// Get returns the entity stored under slug, or errors.ErrNotFound.
	Get(ctx context.Context, slug string) (*place.CanonicalEntity, error)

	// Upsert writes the entity under its slug and reports whether the
	// record was created, updated, or left unchanged. Content equality
	// is judged by place.CanonicalEntity.ContentHash, so bookkeeping
	// timestamps never force a write. The given entity is not mutated.
	Upsert(ctx context.Context, entity *place.CanonicalEntity) (Outcome, error)

	// List returns entities ordered by slug using keyset pagination.
	// A non-positive pageSize falls back to constants.DefaultPageSize
	// and sizes above constants.MaxPageSize are clamped.
	List(ctx context.Context, pageSize int, pageToken string) (*Page, error)

	// Delete removes the entity stored under slug, or returns
	// errors.ErrNotFound if no such entity exists.
	Delete(ctx context.Context, slug string) error

	// Count returns the number of stored entities.
	Count(ctx context.Context) (int, error)

	// Close releases the store's resources. Operations after Close
	// return errors.ErrStoreClosed.
	Close() error
}

// ClampPageSize normalizes a requested page size to the allowed range.
func ClampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		return constants.MaxPageSize
	}
	return pageSize
}
