package place_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/placemap/pkg/place"
)

func TestCandidateGroup(t *testing.T) {
	group := &place.CandidateGroup{
		Observations: []*place.Observation{
			{ID: "obs-c", ConnectorID: "places_api"},
			{ID: "obs-a", ConnectorID: "search_snippets"},
			{ID: "obs-b", ConnectorID: "places_api"},
		},
		Tiers: map[string]place.MatchTier{
			"obs-c": place.TierSeed,
			"obs-a": place.TierStrongID,
			"obs-b": place.TierGeo,
		},
	}

	assert.Equal(t, 3, group.Size())
	assert.Equal(t, []string{"obs-a", "obs-b", "obs-c"}, group.IDs())
	assert.Equal(t, []place.ConnectorID{"places_api", "search_snippets"}, group.Connectors())
}

func TestMatchTierString(t *testing.T) {
	assert.Equal(t, "strong_id", place.TierStrongID.String())
	assert.Equal(t, "fuzzy_name", place.TierFuzzyName.String())
}
