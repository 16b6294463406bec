package merge

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/trust"
)

// Candidate is one observation's value for the field under resolution.
// The observation rides along because the conflict cascade breaks ties
// on its confidence, completeness, and priority, not only on connector
// trust.
type Candidate struct {
	Observation *place.Observation
	Value       string
}

// FieldMerger resolves single fields across an ordered candidate list
// using the per-field-group strategies. It never branches on a
// connector's literal identity, only on what the trust model's Rank
// returns plus capability flags.
type FieldMerger struct {
	trust *trust.Model
}

// NewFieldMerger creates a FieldMerger bound to a trust model.
func NewFieldMerger(model *trust.Model) *FieldMerger {
	return &FieldMerger{trust: model}
}

// First resolves an identity or contact scalar: the first non-missing
// value in cascade order wins. ok is false when every candidate is
// missing; the merged field then stays absent.
func (f *FieldMerger) First(candidates []Candidate, group trust.FieldGroup) (string, place.ConnectorID, bool) {
	kept := present(candidates)
	if len(kept) == 0 {
		return "", "", false
	}
	f.Sort(kept, group)
	return kept[0].Value, kept[0].Observation.ConnectorID, true
}

// Narrative resolves summary or description text: the strictly longer
// (whitespace-normalized) non-missing value wins, length ties fall back
// to cascade order. Trust alone never overrides materially richer text
// from a lower-trust source.
func (f *FieldMerger) Narrative(candidates []Candidate) (string, place.ConnectorID, bool) {
	kept := present(candidates)
	if len(kept) == 0 {
		return "", "", false
	}
	f.Sort(kept, trust.FieldGroupNarrative)
	best := kept[0]
	bestLen := narrativeLength(best.Value)
	for _, c := range kept[1:] {
		if l := narrativeLength(c.Value); l > bestLen {
			best, bestLen = c, l
		}
	}
	return best.Value, best.Observation.ConnectorID, true
}

// Geo resolves the coordinate pair atomically. Only connectors the trust
// model marks geo-capable that actually report both coordinates are
// eligible; among eligible observations cascade order decides. Presence
// beats trust: a connector that never emits coordinates cannot win this
// field regardless of tier, and the winning latitude and longitude
// always come from the same observation.
func (f *FieldMerger) Geo(ordered []*place.Observation) (float64, float64, place.ConnectorID, bool) {
	eligible := make([]Candidate, 0, len(ordered))
	for _, o := range ordered {
		if !f.trust.GeoCapable(o.ConnectorID) || !o.HasCoordinates() {
			continue
		}
		eligible = append(eligible, Candidate{Observation: o})
	}
	if len(eligible) == 0 {
		return 0, 0, "", false
	}
	f.Sort(eligible, trust.FieldGroupGeo)
	winner := eligible[0].Observation
	return *winner.Latitude, *winner.Longitude, winner.ConnectorID, true
}

// Union merges one canonical dimension array across the group: every
// non-missing element contributes, the result is deduplicated and
// sorted lexicographically. There is no single winner; the sorted
// contributing connectors come back alongside the values.
func (f *FieldMerger) Union(ordered []*place.Observation, dimension string) ([]string, []place.ConnectorID) {
	seen := make(map[string]struct{})
	contributors := make(map[place.ConnectorID]struct{})
	var values []string
	for _, o := range ordered {
		for _, v := range o.Dimensions[dimension] {
			v = strings.TrimSpace(v)
			if place.MissingString(v) {
				continue
			}
			contributors[o.ConnectorID] = struct{}{}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	sort.Strings(values)
	connectors := make([]place.ConnectorID, 0, len(contributors))
	for c := range contributors {
		connectors = append(connectors, c)
	}
	sort.Slice(connectors, func(i, j int) bool { return connectors[i] < connectors[j] })
	return values, connectors
}

// Sort orders candidates in place by the conflict cascade for a field
// group. The sort is stable: candidates that tie on every cascade key
// keep their incoming order, which for Order output already ends in the
// unique record id.
func (f *FieldMerger) Sort(candidates []Candidate, group trust.FieldGroup) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return f.less(candidates[i], candidates[j], group)
	})
}

// less reports whether a ranks before b for a field group, following
// the conflict cascade: trust tier, quality score, per-observation
// confidence, observation completeness, declared priority (all
// descending), then connector id ascending.
func (f *FieldMerger) less(a, b Candidate, group trust.FieldGroup) bool {
	ra := f.trust.Rank(a.Observation.ConnectorID, group)
	rb := f.trust.Rank(b.Observation.ConnectorID, group)
	if ra.Tier != rb.Tier {
		return ra.Tier > rb.Tier
	}
	if ra.Score != rb.Score {
		return ra.Score > rb.Score
	}
	if ca, cb := confidence(a.Observation), confidence(b.Observation); ca != cb {
		return ca > cb
	}
	if ca, cb := a.Observation.Completeness(), b.Observation.Completeness(); ca != cb {
		return ca > cb
	}
	if pa, pb := f.priority(a.Observation), f.priority(b.Observation); pa != pb {
		return pa > pb
	}
	return a.Observation.ConnectorID < b.Observation.ConnectorID
}

// priority returns the observation's declared priority, falling back to
// the connector's declared priority from the trust table.
func (f *FieldMerger) priority(o *place.Observation) int {
	if o.Priority != nil {
		return *o.Priority
	}
	return f.trust.Priority(o.ConnectorID)
}

// confidence treats an absent extraction confidence as zero, so
// unscored observations rank below any scored one.
func confidence(o *place.Observation) float64 {
	if o.Confidence == nil {
		return 0
	}
	return *o.Confidence
}

// present filters candidates through the missingness predicate before
// any strategy runs.
func present(candidates []Candidate) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if place.MissingString(c.Value) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// narrativeLength measures text richness as the rune count of the
// whitespace-normalized value, so padding and formatting never inflate
// a candidate.
func narrativeLength(s string) int {
	return utf8.RuneCountInString(strings.Join(strings.Fields(s), " "))
}
