// Package postgres provides a PostgreSQL-backed entity store for
// deployments where resolved entities feed a shared database. Arrays,
// module trees, and provenance live in JSONB columns; the contributing
// connector set is denormalized into a TEXT[] column so downstream
// consumers can filter by source without unpacking JSON.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/lib/pq"

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
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	summary      TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	phone        TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	postcode     TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	dimensions   JSONB NOT NULL DEFAULT 'null',
	modules      JSONB NOT NULL DEFAULT 'null',
	external_ids JSONB NOT NULL DEFAULT 'null',
	provenance   JSONB NOT NULL DEFAULT 'null',
	connectors   TEXT[] NOT NULL DEFAULT '{}',
	observations INTEGER NOT NULL DEFAULT 0,
	content_hash TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_canonical_entities_city ON canonical_entities (city);
CREATE INDEX IF NOT EXISTS idx_canonical_entities_connectors ON canonical_entities USING gin (connectors);
`

const entityColumns = `slug, name, entity_class, latitude, longitude,
	summary, description, phone, website, email, address, postcode, city,
	dimensions, modules, external_ids, provenance, observations,
	created_at, updated_at`

// Store persists canonical entities in PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL with the given DSN and ensures the
// schema exists.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.NewValidationError("dsn", dsn, "database DSN is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.WrapIO("open", "postgres", err)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Bound the connectivity check so a wrong host in the DSN fails
	// instead of hanging the command.
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", "postgres", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", "postgres", fmt.Errorf("create schema: %w", err))
	}
	return &Store{db: db}, nil
}

// Get returns the entity stored under slug.
func (s *Store) Get(ctx context.Context, slug string) (*place.CanonicalEntity, error) {
	if s == nil || s.db == nil {
		return nil, errors.ErrStoreClosed
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM canonical_entities WHERE slug = $1`, slug)
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
// row is locked while the hash is compared so concurrent upserts of
// the same slug serialize on the database side as well.
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
		`SELECT content_hash FROM canonical_entities WHERE slug = $1 FOR UPDATE`,
		entity.Slug).Scan(&existingHash)
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

	_, err = tx.ExecContext(ctx, `
		INSERT INTO canonical_entities (
			slug, name, entity_class, latitude, longitude,
			summary, description, phone, website, email, address, postcode, city,
			dimensions, modules, external_ids, provenance, connectors,
			observations, content_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			entity_class = EXCLUDED.entity_class,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			summary = EXCLUDED.summary,
			description = EXCLUDED.description,
			phone = EXCLUDED.phone,
			website = EXCLUDED.website,
			email = EXCLUDED.email,
			address = EXCLUDED.address,
			postcode = EXCLUDED.postcode,
			city = EXCLUDED.city,
			dimensions = EXCLUDED.dimensions,
			modules = EXCLUDED.modules,
			external_ids = EXCLUDED.external_ids,
			provenance = EXCLUDED.provenance,
			connectors = EXCLUDED.connectors,
			observations = EXCLUDED.observations,
			content_hash = EXCLUDED.content_hash,
			updated_at = NOW()`,
		entity.Slug, entity.Name, string(entity.EntityClass), entity.Latitude, entity.Longitude,
		entity.Summary, entity.Description, entity.Phone, entity.Website, entity.Email,
		entity.Address, entity.Postcode, entity.City,
		dimensions, modules, externalIDs, prov, pq.Array(entity.Connectors()),
		entity.Observations, hash,
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
		 WHERE slug > $1 ORDER BY slug ASC LIMIT $2`,
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
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM canonical_entities WHERE slug = $1`, slug)
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
		createdAt   time.Time
		updatedAt   time.Time
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
	entity.CreatedAt = utc.Time{Time: createdAt.UTC()}
	entity.UpdatedAt = utc.Time{Time: updatedAt.UTC()}
	return &entity, nil
}

var _ store.Store = (*Store)(nil)
