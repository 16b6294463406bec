package place

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/agentstation/utc"

	"github.com/agentstation/placemap/pkg/provenance"
)

// CanonicalEntity is the persisted result of merging one candidate
// group. It is keyed by slug and written with upsert semantics; stores
// own the CreatedAt/UpdatedAt bookkeeping, everything else is a pure
// function of the group's observations and the trust table.
type CanonicalEntity struct {
	Slug        string      `json:"slug" yaml:"slug"` // Stable upsert key derived from the merged name
	Name        string      `json:"name" yaml:"name"`
	EntityClass EntityClass `json:"entity_class,omitempty" yaml:"entity_class,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`

	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Postcode string `json:"postcode,omitempty" yaml:"postcode,omitempty"`
	City     string `json:"city,omitempty" yaml:"city,omitempty"`

	// Dimensions holds the unioned canonical arrays, each sorted and
	// deduplicated, keyed by dimension name.
	Dimensions map[string][]string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// Modules is the deep-merged attribute tree.
	Modules Module `json:"modules,omitempty" yaml:"modules,omitempty"`

	// ExternalIDs unions every member's external identifier, keyed by
	// connector. A connector's own id is never dropped because another
	// connector won other fields.
	ExternalIDs map[ConnectorID][]string `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`

	// Provenance maps each merged field to its contributing connectors.
	Provenance provenance.Map `json:"provenance,omitempty" yaml:"provenance,omitempty"`

	// Observations is the size of the merged group.
	Observations int `json:"observations" yaml:"observations"`

	// Store bookkeeping, excluded from the content hash.
	CreatedAt utc.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt utc.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Connectors returns the sorted unique connector ids that contributed
// to the entity, drawn from external ids and provenance.
func (e *CanonicalEntity) Connectors() []string {
	seen := make(map[string]struct{})
	for c := range e.ExternalIDs {
		seen[string(c)] = struct{}{}
	}
	for _, contributors := range e.Provenance {
		for _, c := range contributors {
			seen[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ContentHash returns a stable hash of the entity's merged content,
// excluding store bookkeeping timestamps. Stores use it to skip writes
// when a re-finalized entity is unchanged, which keeps repeated
// finalization byte-identical on disk.
func (e *CanonicalEntity) ContentHash() string {
	shadow := *e
	shadow.CreatedAt = utc.Time{}
	shadow.UpdatedAt = utc.Time{}
	// JSON marshaling sorts map keys, so the encoding is deterministic
	// for identical content.
	data, err := json.Marshal(&shadow)
	if err != nil {
		data = []byte(e.Slug)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Copy returns a deep copy of the entity. Stores hand out copies so
// callers can never mutate persisted state in place.
func (e *CanonicalEntity) Copy() *CanonicalEntity {
	out := *e
	if e.Latitude != nil {
		lat := *e.Latitude
		out.Latitude = &lat
	}
	if e.Longitude != nil {
		lon := *e.Longitude
		out.Longitude = &lon
	}
	if e.Dimensions != nil {
		out.Dimensions = make(map[string][]string, len(e.Dimensions))
		for k, v := range e.Dimensions {
			out.Dimensions[k] = append([]string(nil), v...)
		}
	}
	out.Modules = e.Modules.Copy()
	if e.ExternalIDs != nil {
		out.ExternalIDs = make(map[ConnectorID][]string, len(e.ExternalIDs))
		for k, v := range e.ExternalIDs {
			out.ExternalIDs[k] = append([]string(nil), v...)
		}
	}
	out.Provenance = e.Provenance.Copy()
	return &out
}
