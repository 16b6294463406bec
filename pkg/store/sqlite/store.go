// Package sqlite provides the default persistent entity store, backed
// by a single-file SQLite database via the pure-Go modernc driver. The
// schema is created on open; no external migration tooling is needed
// for one table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentstation/utc"
	_ "modernc.org/sqlite"

	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS canonical_entities (
	slug         TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	entity_class TEXT NOT NULL DEFAULT '',
	latitude     REAL,
	longitude    REAL,
	summary      TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	postcode     TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	dimensions   TEXT NOT NULL DEFAULT 'null',
	modules      TEXT NOT NULL DEFAULT 'null',
	external_ids TEXT NOT NULL DEFAULT 'null',
	provenance   TEXT NOT NULL DEFAULT 'null',
	observations INTEGER NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
`

const entityColumns = `slug, name, entity_class, latitude, longitude,
	summary, description, phone, website, email, address, postcode, city,
	dimensions, modules, external_ids, provenance, observations,
	created_at, updated_at`

// Store persists canonical entities in a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite store at path and
// ensures the schema exists. The parent directory is created when
// missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewValidationError("path", path, "database path is required")
	}
	path = filepath.Clean(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", dir, err)
		}
	}

	// Pragmas ride on the DSN so every pooled connection gets them, not
	// just the one that happened to run an Exec.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, fmt.Errorf("create schema: %w", err))
	}
	return &Store{db: db}, nil
}

// Get returns the entity stored under slug.
func (s *Store) Get(ctx context.Context, slug string) (*place.CanonicalEntity, error) {
	if s == nil || s.db == nil {
		return nil, errors.ErrStoreClosed
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM canonical_entities WHERE slug = ?`, slug)
	entity, err := scanEntity(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("entity", slug)
	}
	if err != nil {
		return nil, errors.WrapResource("get", "entity", slug, err)
	}
	return entity, nil
}

// Upsert writes the entity inside a transaction, short-circuiting to
// OutcomeUnchanged when the stored content hash already matches. The
// created_at column survives updates; only a real content change
// advances updated_at.
func (s *Store) Upsert(ctx context.Context, entity *place.CanonicalEntity) (store.Outcome, error) {
	if s == nil || s.db == nil {
		return "", errors.ErrStoreClosed
	}
	if entity == nil || entity.Slug == "" {
		return "", errors.NewValidationError("slug", "", "entity slug is required")
	}
	hash := entity.ContentHash()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.WrapResource("upsert", "entity", entity.Slug, err)
	}
	defer func() { _ = tx.Rollback() }()

	outcome := store.OutcomeUpdated
	var existingHash string
	err = tx.QueryRowContext(ctx,
		`SELECT content_hash FROM canonical_entities WHERE slug = ?`, entity.Slug).Scan(&existingHash)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		outcome = store.OutcomeCreated
	case err != nil:
		return "", errors.WrapResource("upsert", "entity", entity.Slug, err)
	case existingHash == hash:
		return store.OutcomeUnchanged, nil
	}

	// Entity content is plain scalar/list/map trees decoded from
	// connector payloads, so marshaling cannot fail here.
	dimensions, _ := json.Marshal(entity.Dimensions)
	modules, _ := json.Marshal(entity.Modules)
	externalIDs, _ := json.Marshal(entity.ExternalIDs)
	prov, _ := json.Marshal(entity.Provenance)
	now := utc.Now().UnixMilli()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO canonical_entities (
			slug, name, entity_class, latitude, longitude,
			summary, description, phone, website, email, address, postcode, city,
			dimensions, modules, external_ids, provenance, observations,
			content_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			entity_class = excluded.entity_class,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			summary = excluded.summary,
			description = excluded.description,
			phone = excluded.phone,
			website = excluded.website,
			email = excluded.email,
			address = excluded.address,
			postcode = excluded.postcode,
			city = excluded.city,
			dimensions = excluded.dimensions,
			modules = excluded.modules,
			external_ids = excluded.external_ids,
			provenance = excluded.provenance,
			observations = excluded.observations,
			content_hash = excluded.content_hash,
			updated_at = excluded.updated_at`,
		entity.Slug, entity.Name, string(entity.EntityClass), entity.Latitude, entity.Longitude,
		entity.Summary, entity.Description, entity.Phone, entity.Website, entity.Email,
		entity.Address, entity.Postcode, entity.City,
		string(dimensions), string(modules), string(externalIDs), string(prov),
		entity.Observations, hash, now, now,
	)
	if err != nil {
		return "", errors.WrapResource("upsert", "entity", entity.Slug, err)
	}
	if err := tx.Commit(); err != nil {
		return "", errors.WrapResource("upsert", "entity", entity.Slug, err)
	}
	return outcome, nil
}

// List returns entities ordered by slug using keyset pagination.
func (s *Store) List(ctx context.Context, pageSize int, pageToken string) (*store.Page, error) {
	if s == nil || s.db == nil {
		return nil, errors.ErrStoreClosed
	}
	pageSize = store.ClampPageSize(pageSize)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entityColumns+` FROM canonical_entities
		 WHERE slug > ? ORDER BY slug ASC LIMIT ?`,
		pageToken, pageSize+1)
	if err != nil {
		return nil, errors.WrapResource("list", "entity", "", err)
	}
	defer rows.Close()

	page := &store.Page{Entities: make([]*place.CanonicalEntity, 0, pageSize)}
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, errors.WrapResource("list", "entity", "", err)
		}
		page.Entities = append(page.Entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapResource("list", "entity", "", err)
	}
	if len(page.Entities) > pageSize {
		page.NextPageToken = page.Entities[pageSize-1].Slug
		page.Entities = page.Entities[:pageSize]
	}
	return page, nil
}

// Delete removes the entity stored under slug.
func (s *Store) Delete(ctx context.Context, slug string) error {
	if s == nil || s.db == nil {
		return errors.ErrStoreClosed
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM canonical_entities WHERE slug = ?`, slug)
	if err != nil {
		return errors.WrapResource("delete", "entity", slug, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.WrapResource("delete", "entity", slug, err)
	}
	if affected == 0 {
		return errors.NewNotFoundError("entity", slug)
	}
	return nil
}

// Count returns the number of stored entities.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.ErrStoreClosed
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM canonical_entities`).Scan(&count); err != nil {
		return 0, errors.WrapResource("count", "entity", "", err)
	}
	return count, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*place.CanonicalEntity, error) {
	var (
		entity      place.CanonicalEntity
		entityClass string
		latitude    sql.NullFloat64
		longitude   sql.NullFloat64
		dimensions  []byte
		modules     []byte
		externalIDs []byte
		prov        []byte
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(
		&entity.Slug, &entity.Name, &entityClass, &latitude, &longitude,
		&entity.Summary, &entity.Description, &entity.Phone, &entity.Website,
		&entity.Email, &entity.Address, &entity.Postcode, &entity.City,
		&dimensions, &modules, &externalIDs, &prov, &entity.Observations,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	entity.EntityClass = place.EntityClass(entityClass)
	if latitude.Valid {
		entity.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		entity.Longitude = &longitude.Float64
	}
	if err := json.Unmarshal(dimensions, &entity.Dimensions); err != nil {
		return nil, fmt.Errorf("decode dimensions: %w", err)
	}
	if err := json.Unmarshal(modules, &entity.Modules); err != nil {
		return nil, fmt.Errorf("decode modules: %w", err)
	}
	if err := json.Unmarshal(externalIDs, &entity.ExternalIDs); err != nil {
		return nil, fmt.Errorf("decode external ids: %w", err)
	}
	if err := json.Unmarshal(prov, &entity.Provenance); err != nil {
		return nil, fmt.Errorf("decode provenance: %w", err)
	}
	entity.CreatedAt = fromMillis(createdAt)
	entity.UpdatedAt = fromMillis(updatedAt)
	return &entity, nil
}

func fromMillis(v int64) utc.Time {
	return utc.Time{Time: time.UnixMilli(v).UTC()}
}

var _ store.Store = (*Store)(nil)
