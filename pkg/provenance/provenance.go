// Package provenance provides field-level tracking of which connectors
// contributed each merged value, so downstream consumers can audit where
// a canonical entity's data came from.
package provenance

import (
	"fmt"
	"sort"
	"strings"
)

// Map records, per merged field path, the connector ids that won or
// contributed the field's value. Keys are field paths such as "name",
// "latitude", or "dimensions.tags"; values are sorted unique connector
// ids. Array and module fields list every contributing connector, scalar
// fields list the single winner.
type Map map[string][]string

// Fields returns the sorted field paths present in the map.
func (m Map) Fields() []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Contributors returns the connector ids recorded for a field, or nil
// when the field has no provenance.
func (m Map) Contributors(field string) []string {
	return m[field]
}

// Copy returns a deep copy of the map.
func (m Map) Copy() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// String renders the map as a human-readable audit listing, one field
// per line, fields sorted.
func (m Map) String() string {
	var sb strings.Builder
	for _, field := range m.Fields() {
		fmt.Fprintf(&sb, "%s: %s\n", field, strings.Join(m[field], ", "))
	}
	return sb.String()
}

// Tracker accumulates provenance during one entity merge. A tracker is
// scoped to a single merge pass; concurrent merges each use their own.
type Tracker struct {
	entries map[string]map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]map[string]struct{})}
}

// Record notes that the given connectors contributed a field's merged
// value. Recording the same connector twice is a no-op.
func (t *Tracker) Record(field string, connectors ...string) {
	if len(connectors) == 0 {
		return
	}
	set, ok := t.entries[field]
	if !ok {
		set = make(map[string]struct{}, len(connectors))
		t.entries[field] = set
	}
	for _, c := range connectors {
		if c == "" {
			continue
		}
		set[c] = struct{}{}
	}
}

// Map returns the accumulated provenance with connector ids sorted and
// deduplicated. The returned map is a copy; further Record calls do not
// affect it.
func (t *Tracker) Map() Map {
	out := make(Map, len(t.entries))
	for field, set := range t.entries {
		if len(set) == 0 {
			continue
		}
		connectors := make([]string, 0, len(set))
		for c := range set {
			connectors = append(connectors, c)
		}
		sort.Strings(connectors)
		out[field] = connectors
	}
	return out
}
