// Package trust holds the static per-connector reliability metadata the
// merge pipeline sorts on. A Model is loaded once, immutable for the
// run's lifetime, and injected explicitly; merge logic never branches on
// a connector's literal identity, only on what Rank returns.
package trust

import (
	"path/filepath"
	"sort"

	"github.com/agentstation/placemap/pkg/place"
)

// Tier is the coarse ordinal ranking of a connector's reliability for a
// field group. Higher is more trusted. Unknown connectors rank at 0.
type Tier int

// Score is the fine-grained quality score used to break ties within a
// tier, in [0,1].
type Score float64

// Rank is the (tier, score) pair merge strategies sort candidates by.
type Rank struct {
	Tier  Tier  `json:"tier" yaml:"tier"`   // Trust tier, higher wins
	Score Score `json:"score" yaml:"score"` // Quality score, breaks tier ties
}

// FieldGroup names a family of entity fields that shares one trust
// ranking, such as narrative text or contact scalars.
type FieldGroup string

// Field groups recognized by the merge pipeline.
const (
	// FieldGroupIdentity covers display scalars: name, entity class.
	FieldGroupIdentity FieldGroup = "identity"
	// FieldGroupContact covers contact and location scalars.
	FieldGroupContact FieldGroup = "contact"
	// FieldGroupGeo covers latitude/longitude.
	FieldGroupGeo FieldGroup = "geo"
	// FieldGroupNarrative covers summary and description text.
	FieldGroupNarrative FieldGroup = "narrative"
	// FieldGroupArrays covers canonical dimension arrays.
	FieldGroupArrays FieldGroup = "arrays"
	// FieldGroupModules covers the nested module tree.
	FieldGroupModules FieldGroup = "modules"
	// FieldGroupDefault is the aggregate ranking used for whole-observation
	// ordering when no specific group applies.
	FieldGroupDefault FieldGroup = "default"
)

// String returns the string representation of a FieldGroup.
func (g FieldGroup) String() string {
	return string(g)
}

// Record is one connector's trust configuration: a default rank, optional
// per-field-group overrides, and structural capability flags.
type Record struct {
	ConnectorID place.ConnectorID `json:"connector_id" yaml:"connector_id"`
	Tier        Tier              `json:"tier" yaml:"tier"`                               // Default tier for all field groups
	Score       Score             `json:"score" yaml:"score"`                             // Default quality score
	GeoCapable  bool              `json:"geo_capable,omitempty" yaml:"geo_capable,omitempty"` // Structurally able to report coordinates
	Priority    int               `json:"priority,omitempty" yaml:"priority,omitempty"`   // Declared priority metadata
	FieldGroups map[string]Rank   `json:"field_groups,omitempty" yaml:"field_groups,omitempty"` // Overrides keyed by field-group pattern
}

// Copy returns a deep copy of the record.
func (r Record) Copy() Record {
	out := r
	if r.FieldGroups != nil {
		out.FieldGroups = make(map[string]Rank, len(r.FieldGroups))
		for k, v := range r.FieldGroups {
			out.FieldGroups[k] = v
		}
	}
	return out
}

// Model is the immutable trust table for one run.
type Model struct {
	records map[place.ConnectorID]Record
}

// New creates a Model from connector records. Input records are copied;
// later mutation of the arguments does not affect the model.
func New(records ...Record) *Model {
	m := &Model{records: make(map[place.ConnectorID]Record, len(records))}
	for _, r := range records {
		m.records[r.ConnectorID] = r.Copy()
	}
	return m
}

// Rank returns the (tier, score) ranking of a connector for a field
// group. Resolution order: exact field-group override, then the most
// specific matching pattern override, then the record's default rank.
// Unknown connectors rank at tier 0, score 0.
func (m *Model) Rank(connector place.ConnectorID, group FieldGroup) Rank {
	rec, ok := m.records[connector]
	if !ok {
		return Rank{}
	}
	if rank, ok := rec.FieldGroups[string(group)]; ok {
		return rank
	}
	var bestPattern string
	var bestRank Rank
	for pattern, rank := range rec.FieldGroups {
		if !MatchesPattern(string(group), pattern) {
			continue
		}
		// Prefer the more specific (longer) pattern; equal lengths break
		// lexicographically so resolution never depends on map order.
		if len(pattern) > len(bestPattern) ||
			(len(pattern) == len(bestPattern) && pattern < bestPattern) {
			bestPattern = pattern
			bestRank = rank
		}
	}
	if bestPattern != "" {
		return bestRank
	}
	return Rank{Tier: rec.Tier, Score: rec.Score}
}

// GeoCapable reports whether a connector is structurally able to report
// coordinates. Connectors without this capability never win geo fields
// regardless of trust tier.
func (m *Model) GeoCapable(connector place.ConnectorID) bool {
	rec, ok := m.records[connector]
	return ok && rec.GeoCapable
}

// Priority returns a connector's declared priority metadata, or 0 for
// unknown connectors.
func (m *Model) Priority(connector place.ConnectorID) int {
	rec, ok := m.records[connector]
	if !ok {
		return 0
	}
	return rec.Priority
}

// Find returns a copy of a connector's record, or nil when the model
// has no entry for it.
func (m *Model) Find(connector place.ConnectorID) *Record {
	rec, ok := m.records[connector]
	if !ok {
		return nil
	}
	out := rec.Copy()
	return &out
}

// Connectors returns the sorted connector ids present in the model.
func (m *Model) Connectors() []place.ConnectorID {
	out := make([]place.ConnectorID, 0, len(m.records))
	for c := range m.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Records returns copies of all connector records, sorted by connector id.
func (m *Model) Records() []Record {
	out := make([]Record, 0, len(m.records))
	for _, c := range m.Connectors() {
		out = append(out, m.records[c].Copy())
	}
	return out
}

// Len returns the number of connectors in the model.
func (m *Model) Len() int {
	return len(m.records)
}

// MatchesPattern checks if a field group matches a pattern (supports * wildcards)
func MatchesPattern(group, pattern string) bool {
	// Handle exact matches
	if group == pattern {
		return true
	}

	// Handle simple wildcard at the end
	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(group) >= len(prefix) && group[:len(prefix)] == prefix
	}

	// Handle filepath.Match patterns
	matched, err := filepath.Match(pattern, group)
	if err != nil {
		return false
	}
	return matched
}
