package merge_test

import (
	"fmt"

	"github.com/agentstation/placemap/pkg/merge"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/trust"
)

// Two connectors observe the same venue: the geo-capable API wins the
// coordinate pair, while the snippet scraper's description survives
// because no stronger source offers one.
func ExampleMerger() {
	model := trust.New(
		trust.Record{ConnectorID: "places_api", Tier: 3, Score: 0.9, GeoCapable: true},
		trust.Record{ConnectorID: "search_snippets", Tier: 1, Score: 0.4},
	)

	group := &place.CandidateGroup{Observations: []*place.Observation{
		{
			ID:          "obs-1",
			ConnectorID: "search_snippets",
			Name:        "West Park Padel",
			Description: "3 heated courts",
		},
		{
			ID:          "obs-2",
			ConnectorID: "places_api",
			Name:        "West Park Padel",
			Latitude:    ptr(55.82),
			Longitude:   ptr(-4.62),
		},
	}}

	merger := merge.NewMerger(model)
	entity, err := merger.Merge(merge.Order(group, model))
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(entity.Name)
	fmt.Println(*entity.Latitude, *entity.Longitude)
	fmt.Println(entity.Description)
	// Output:
	// West Park Padel
	// 55.82 -4.62
	// 3 heated courts
}
