package finalize_test

import (
	"context"
	"fmt"

	"github.com/agentstation/placemap/pkg/finalize"
	"github.com/agentstation/placemap/pkg/place"
	"github.com/agentstation/placemap/pkg/store/memory"
	"github.com/agentstation/placemap/pkg/trust"
)

func ExampleFinalizer_Finalize() {
	model := trust.New(
		trust.Record{ConnectorID: "places_api", Tier: 3, Score: 0.9, GeoCapable: true},
	)
	f := finalize.New(model, memory.New())

	group := &place.CandidateGroup{Observations: []*place.Observation{
		{
			ID:          "obs-1",
			ConnectorID: "places_api",
			ExternalID:  "gp-42",
			EntityClass: "padel_club",
			Name:        "Café Müller — Tennis & Padel",
		},
	}}

	result, err := f.Finalize(context.Background(), group)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(result.Slug, result.Outcome)
	// Output:
	// cafe-muller-tennis-padel created
}

// Re-finalizing the same batch writes nothing the second time.
func ExampleFinalizer_FinalizeAll() {
	model := trust.New(
		trust.Record{ConnectorID: "places_api", Tier: 3, Score: 0.9, GeoCapable: true},
	)
	f := finalize.New(model, memory.New(), finalize.WithConcurrency(1))

	group := func() *place.CandidateGroup {
		return &place.CandidateGroup{Observations: []*place.Observation{
			{
				ID:          "obs-1",
				ConnectorID: "places_api",
				ExternalID:  "gp-42",
				EntityClass: "padel_club",
				Name:        "West Park Padel",
			},
		}}
	}

	ctx := context.Background()
	first, err := f.FinalizeAll(ctx, []*place.CandidateGroup{group()})
	if err != nil {
		fmt.Println(err)
		return
	}
	second, err := f.FinalizeAll(ctx, []*place.CandidateGroup{group()})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("first run created:", first.Created())
	fmt.Println("second run unchanged:", second.Unchanged())
	// Output:
	// first run created: 1
	// second run unchanged: 1
}
