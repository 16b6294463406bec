package merge_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/placemap/pkg/merge"
	"github.com/agentstation/placemap/pkg/place"
)

func orderedIDs(observations []*place.Observation) []string {
	ids := make([]string, 0, len(observations))
	for _, o := range observations {
		ids = append(ids, o.ID)
	}
	return ids
}

func TestOrder(t *testing.T) {
	model := testModel()
	group := &place.CandidateGroup{Observations: []*place.Observation{
		{ID: "obs-4", ConnectorID: "places_api", Name: "West Park Padel"},
		{ID: "obs-3", ConnectorID: "search_snippets", Name: "West Park Padel"},
		{ID: "obs-5", ConnectorID: "mystery_feed", Name: "West Park Padel"},
		{ID: "obs-1", ConnectorID: "facility_registry", Name: "West Park Padel"},
		{ID: "obs-2", ConnectorID: "places_api", Name: "West Park Padel"},
	}}

	ordered := merge.Order(group, model)

	// Tier descending, then connector id, then record id; unknown
	// connectors rank at tier zero and sort last.
	want := []string{"obs-1", "obs-2", "obs-4", "obs-3", "obs-5"}
	if diff := cmp.Diff(want, orderedIDs(ordered)); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}

	// The group itself keeps its admission order.
	assert.Equal(t, "obs-4", group.Observations[0].ID)
}

func TestOrderArrivalIndependence(t *testing.T) {
	model := testModel()
	observations := []*place.Observation{
		{ID: "obs-1", ConnectorID: "facility_registry", Name: "West Park Padel"},
		{ID: "obs-2", ConnectorID: "places_api", Name: "West Park Padel"},
		{ID: "obs-3", ConnectorID: "search_snippets", Name: "West Park Padel"},
	}

	forward := merge.Order(&place.CandidateGroup{Observations: observations}, model)

	reversed := []*place.Observation{observations[2], observations[1], observations[0]}
	backward := merge.Order(&place.CandidateGroup{Observations: reversed}, model)

	if diff := cmp.Diff(orderedIDs(forward), orderedIDs(backward)); diff != "" {
		t.Errorf("ordering depends on arrival order (-forward +backward):\n%s", diff)
	}
}

func BenchmarkOrder(b *testing.B) {
	model := testModel()

	connectors := []string{"facility_registry", "places_api", "search_snippets", "open_data", "mystery_feed"}
	group := &place.CandidateGroup{}
	for i := 0; i < 20; i++ {
		group.Observations = append(group.Observations, &place.Observation{
			ID:          fmt.Sprintf("obs-%03d", i),
			ConnectorID: place.ConnectorID(connectors[i%len(connectors)]),
			Name:        "Meadowbank Sports Centre",
			Description: "Community sports centre",
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		merge.Order(group, model)
	}
}
