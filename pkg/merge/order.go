package merge

import (
	"sort"

	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/trust"
)

// Order returns a group's observations in the single deterministic order
// every downstream merge step relies on: trust tier descending under the
// default field group, then connector id, then record id. Record ids are
// unique, so the order is total and never depends on member arrival or
// storage order. The group itself is not modified.
func Order(group *place.CandidateGroup, model *trust.Model) []*place.Observation {
	ordered := make([]*place.Observation, len(group.Observations))
	copy(ordered, group.Observations)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		ra := model.Rank(a.ConnectorID, trust.FieldGroupDefault)
		rb := model.Rank(b.ConnectorID, trust.FieldGroupDefault)
		if ra.Tier != rb.Tier {
			return ra.Tier > rb.Tier
		}
		if a.ConnectorID != b.ConnectorID {
			return a.ConnectorID < b.ConnectorID
		}
		return a.ID < b.ID
	})
	return ordered
}
