// Package memory provides an in-memory entity store for tests, dry
// runs, and ephemeral resolution batches. Nothing survives process
// exit.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/agentstation/utc"

	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/store"
)

// Store keeps canonical entities in a mutex-guarded map. Entities are
// deep-copied on the way in and out, so callers can never mutate
// persisted state in place.
type Store struct {
	mu       sync.RWMutex
	entities map[string]*place.CanonicalEntity
	closed   bool
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{entities: make(map[string]*place.CanonicalEntity)}
}

// Get returns the entity stored under slug.
func (s *Store) Get(ctx context.Context, slug string) (*place.CanonicalEntity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStoreClosed
	}
	entity, ok := s.entities[slug]
	if !ok {
		return nil, errors.NewNotFoundError("entity", slug)
	}
	return entity.Copy(), nil
}

// Upsert writes the entity under its slug, skipping the write entirely
// when the stored content hash already matches.
func (s *Store) Upsert(ctx context.Context, entity *place.CanonicalEntity) (store.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if entity == nil || entity.Slug == "" {
		return "", errors.NewValidationError("slug", "", "entity slug is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errors.ErrStoreClosed
	}

	existing, ok := s.entities[entity.Slug]
	if ok && existing.ContentHash() == entity.ContentHash() {
		return store.OutcomeUnchanged, nil
	}

	stored := entity.Copy()
	now := utc.Now()
	if ok {
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = now
		s.entities[entity.Slug] = stored
		return store.OutcomeUpdated, nil
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.entities[entity.Slug] = stored
	return store.OutcomeCreated, nil
}

// List returns entities ordered by slug using keyset pagination.
func (s *Store) List(ctx context.Context, pageSize int, pageToken string) (*store.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pageSize = store.ClampPageSize(pageSize)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errors.ErrStoreClosed
	}

	slugs := make([]string, 0, len(s.entities))
	for slug := range s.entities {
		if pageToken != "" && slug <= pageToken {
			continue
		}
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	page := &store.Page{Entities: make([]*place.CanonicalEntity, 0, pageSize)}
	for _, slug := range slugs {
		if len(page.Entities) == pageSize {
			page.NextPageToken = page.Entities[pageSize-1].Slug
			break
		}
		page.Entities = append(page.Entities, s.entities[slug].Copy())
	}
	return page, nil
}

// Delete removes the entity stored under slug.
func (s *Store) Delete(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrStoreClosed
	}
	if _, ok := s.entities[slug]; !ok {
		return errors.NewNotFoundError("entity", slug)
	}
	delete(s.entities, slug)
	return nil
}

// Count returns the number of stored entities.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, errors.ErrStoreClosed
	}
	return len(s.entities), nil
}

// Close marks the store closed. Further operations fail with
// errors.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ store.Store = (*Store)(nil)
