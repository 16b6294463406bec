// Package merge turns an ordered candidate group into a single
// canonical entity. Field conflicts resolve through metadata-driven
// strategies over the trust model — never through a connector's literal
// identity or the group's arrival order — so merging the same
// observation multiset with the same trust table always produces the
// same entity, byte for byte.
package merge

import (
	"sort"

	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/provenance"
	"github.com/agentstation/placemap/pkg/trust"
)

// Merger merges one ordered candidate group into a canonical entity.
type Merger interface {
	// Merge resolves every field across the ordered observations and
	// returns the merged entity carrying its provenance map. The slice
	// must come from Order; an empty group is a programming error and
	// fails with errors.ErrEmptyGroup.
	Merge(ordered []*place.Observation) (*place.CanonicalEntity, error)
}

// merger implements Merger on top of the per-field strategies.
type merger struct {
	trust  *trust.Model
	fields *FieldMerger
}

// NewMerger creates a Merger bound to a trust model.
func NewMerger(model *trust.Model) Merger {
	return &merger{trust: model, fields: NewFieldMerger(model)}
}

// contactFields pairs each contact and location scalar with its
// accessor and assignment, keeping the merge loop declarative.
var contactFields = []struct {
	path   string
	value  func(*place.Observation) string
	assign func(*place.CanonicalEntity, string)
}{
	{"phone", func(o *place.Observation) string { return o.Phone }, func(e *place.CanonicalEntity, v string) { e.Phone = v }},
	{"website", func(o *place.Observation) string { return o.Website }, func(e *place.CanonicalEntity, v string) { e.Website = v }},
	{"email", func(o *place.Observation) string { return o.Email }, func(e *place.CanonicalEntity, v string) { e.Email = v }},
	{"address", func(o *place.Observation) string { return o.Address }, func(e *place.CanonicalEntity, v string) { e.Address = v }},
	{"postcode", func(o *place.Observation) string { return o.Postcode }, func(e *place.CanonicalEntity, v string) { e.Postcode = v }},
	{"city", func(o *place.Observation) string { return o.City }, func(e *place.CanonicalEntity, v string) { e.City = v }},
}

// narrativeFields pairs each narrative scalar with its accessor and
// assignment.
var narrativeFields = []struct {
	path   string
	value  func(*place.Observation) string
	assign func(*place.CanonicalEntity, string)
}{
	{"summary", func(o *place.Observation) string { return o.Summary }, func(e *place.CanonicalEntity, v string) { e.Summary = v }},
	{"description", func(o *place.Observation) string { return o.Description }, func(e *place.CanonicalEntity, v string) { e.Description = v }},
}

// Merge resolves every field of the ordered group.
func (m *merger) Merge(ordered []*place.Observation) (*place.CanonicalEntity, error) {
	if len(ordered) == 0 {
		return nil, errors.ErrEmptyGroup
	}

	tracker := provenance.NewTracker()
	entity := &place.CanonicalEntity{Observations: len(ordered)}

	m.identity(entity, ordered, tracker)
	m.geo(entity, ordered, tracker)
	m.narrative(entity, ordered, tracker)
	m.contact(entity, ordered, tracker)
	m.dimensions(entity, ordered, tracker)
	m.modules(entity, ordered, tracker)
	m.externalIDs(entity, ordered)

	entity.Provenance = tracker.Map()
	return entity, nil
}

// identity resolves the display scalars. Disagreement on entity class
// is not an error; the identity strategy settles it like any other
// scalar.
func (m *merger) identity(entity *place.CanonicalEntity, ordered []*place.Observation, tracker *provenance.Tracker) {
	if value, winner, ok := m.fields.First(candidates(ordered, func(o *place.Observation) string { return o.Name }), trust.FieldGroupIdentity); ok {
		entity.Name = value
		tracker.Record("name", string(winner))
	}
	if value, winner, ok := m.fields.First(candidates(ordered, func(o *place.Observation) string { return string(o.EntityClass) }), trust.FieldGroupIdentity); ok {
		entity.EntityClass = place.EntityClass(value)
		tracker.Record("entity_class", string(winner))
	}
}

// geo resolves the coordinate pair atomically; latitude and longitude
// always come from the same winning observation.
func (m *merger) geo(entity *place.CanonicalEntity, ordered []*place.Observation, tracker *provenance.Tracker) {
	lat, lon, winner, ok := m.fields.Geo(ordered)
	if !ok {
		return
	}
	entity.Latitude = &lat
	entity.Longitude = &lon
	tracker.Record("latitude", string(winner))
	tracker.Record("longitude", string(winner))
}

// narrative resolves summary and description through the richer-text
// strategy.
func (m *merger) narrative(entity *place.CanonicalEntity, ordered []*place.Observation, tracker *provenance.Tracker) {
	for _, field := range narrativeFields {
		if value, winner, ok := m.fields.Narrative(candidates(ordered, field.value)); ok {
			field.assign(entity, value)
			tracker.Record(field.path, string(winner))
		}
	}
}

// contact resolves the contact and location scalars.
func (m *merger) contact(entity *place.CanonicalEntity, ordered []*place.Observation, tracker *provenance.Tracker) {
	for _, field := range contactFields {
		if value, winner, ok := m.fields.First(candidates(ordered, field.value), trust.FieldGroupContact); ok {
			field.assign(entity, value)
			tracker.Record(field.path, string(winner))
		}
	}
}

// dimensions unions every canonical array present anywhere in the
// group; each dimension records all contributing connectors.
func (m *merger) dimensions(entity *place.CanonicalEntity, ordered []*place.Observation, tracker *provenance.Tracker) {
	names := make(map[string]struct{})
	for _, o := range ordered {
		for name := range o.Dimensions {
			names[name] = struct{}{}
		}
	}
	for name := range names {
		values, contributors := m.fields.Union(ordered, name)
		if len(values) == 0 {
			continue
		}
		if entity.Dimensions == nil {
			entity.Dimensions = make(map[string][]string, len(names))
		}
		entity.Dimensions[name] = values
		ids := make([]string, 0, len(contributors))
		for _, c := range contributors {
			ids = append(ids, string(c))
		}
		tracker.Record("dimensions."+name, ids...)
	}
}

// modules deep-merges the attribute trees in cascade order and records
// the contributing connectors per top-level key.
func (m *merger) modules(entity *place.CanonicalEntity, ordered []*place.Observation, tracker *provenance.Tracker) {
	carriers := make([]Candidate, 0, len(ordered))
	for _, o := range ordered {
		if len(o.Modules) == 0 {
			continue
		}
		carriers = append(carriers, Candidate{Observation: o})
	}
	if len(carriers) == 0 {
		return
	}
	m.fields.Sort(carriers, trust.FieldGroupModules)
	trees := make([]place.Module, 0, len(carriers))
	for _, c := range carriers {
		trees = append(trees, c.Observation.Modules)
	}
	merged := MergeModules(trees...)
	if len(merged) == 0 {
		return
	}
	entity.Modules = merged
	for key := range merged {
		for _, c := range carriers {
			if v, ok := c.Observation.Modules[key]; ok && !place.Missing(v) {
				tracker.Record("modules."+key, string(c.Observation.ConnectorID))
			}
		}
	}
}

// externalIDs unions every member's external identifier, keyed by
// connector. A connector's own id is never dropped because another
// connector won other fields.
func (m *merger) externalIDs(entity *place.CanonicalEntity, ordered []*place.Observation) {
	byConnector := make(map[place.ConnectorID]map[string]struct{})
	for _, o := range ordered {
		if place.MissingString(o.ExternalID) {
			continue
		}
		set, ok := byConnector[o.ConnectorID]
		if !ok {
			set = make(map[string]struct{})
			byConnector[o.ConnectorID] = set
		}
		set[o.ExternalID] = struct{}{}
	}
	if len(byConnector) == 0 {
		return
	}
	entity.ExternalIDs = make(map[place.ConnectorID][]string, len(byConnector))
	for connector, set := range byConnector {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		entity.ExternalIDs[connector] = ids
	}
}

// candidates builds the per-field candidate list the scalar strategies
// consume, preserving the incoming order.
func candidates(ordered []*place.Observation, value func(*place.Observation) string) []Candidate {
	out := make([]Candidate, 0, len(ordered))
	for _, o := range ordered {
		out = append(out, Candidate{Observation: o, Value: value(o)})
	}
	return out
}
