package match_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placemap/pkg/match"
	"github.com/agentstation/placemap/pkg/place"
)

func testObs(id, connector, name string) *place.Observation {
	return &place.Observation{
		ID:          id,
		ConnectorID: place.ConnectorID(connector),
		Name:        name,
	}
}

func ptr(v float64) *float64 {
	return &v
}

// groupIDs flattens groups into their sorted member id lists for
// order-insensitive comparison.
func groupIDs(groups []*place.CandidateGroup) [][]string {
	out := make([][]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.IDs())
	}
	return out
}

func TestGroupStrongID(t *testing.T) {
	a := testObs("obs-1", "places_api", "West Park Padel")
	a.ExternalID = "osm:441"
	b := testObs("obs-2", "facility_registry", "Westpark Racquet Hall")
	b.ExternalID = "osm:441"

	groups, diags := match.New().Group([]*place.Observation{a, b})
	require.Empty(t, diags)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"obs-1", "obs-2"}, groups[0].IDs())
	assert.Equal(t, place.TierSeed, groups[0].Tiers["obs-1"])
	assert.Equal(t, place.TierStrongID, groups[0].Tiers["obs-2"])
}

func TestGroupGeo(t *testing.T) {
	t.Run("same name and rounded coordinates", func(t *testing.T) {
		a := testObs("obs-1", "places_api", "West Park Padel")
		a.Latitude, a.Longitude = ptr(55.970312), ptr(-3.171867)
		b := testObs("obs-2", "open_data", "West Park Padel")
		b.Latitude, b.Longitude = ptr(55.970349), ptr(-3.171901)

		groups, diags := match.New().Group([]*place.Observation{a, b})
		require.Empty(t, diags)
		require.Len(t, groups, 1)
		assert.Equal(t, place.TierGeo, groups[0].Tiers["obs-2"])
	})

	t.Run("missing coordinates fall through to fuzzy", func(t *testing.T) {
		a := testObs("obs-1", "places_api", "West Park Padel")
		a.Latitude, a.Longitude = ptr(55.9703), ptr(-3.1719)
		b := testObs("obs-2", "search_snippets", "West Park Padel")

		groups, diags := match.New().Group([]*place.Observation{a, b})
		require.Empty(t, diags)
		require.Len(t, groups, 1)
		assert.Equal(t, place.TierFuzzyName, groups[0].Tiers["obs-2"])
	})

	t.Run("coordinates apart stay separate", func(t *testing.T) {
		a := testObs("obs-1", "places_api", "The Pavilion")
		a.Latitude, a.Longitude = ptr(55.9703), ptr(-3.1719)
		b := testObs("obs-2", "open_data", "Harbour Light")
		b.Latitude, b.Longitude = ptr(51.5033), ptr(-0.1196)

		groups, _ := match.New().Group([]*place.Observation{a, b})
		assert.Len(t, groups, 2)
	})
}

func TestGroupFuzzyName(t *testing.T) {
	// Spelling variants with no shared id or coordinates group on the
	// fuzzy name tier.
	a := testObs("obs-1", "facility_registry", "Meadowbank Sports Centre")
	b := testObs("obs-2", "search_snippets", "Meadowbank Sports Center")

	groups, diags := match.New().Group([]*place.Observation{a, b})
	require.Empty(t, diags)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"obs-1", "obs-2"}, groups[0].IDs())
	assert.Equal(t, place.TierFuzzyName, groups[0].Tiers["obs-2"])
}

func TestGroupDistinct(t *testing.T) {
	// Nothing shared at any tier: three observations, three groups.
	a := testObs("obs-1", "places_api", "Meadowbank Sports Centre")
	b := testObs("obs-2", "open_data", "Harbour Light Cinema")
	c := testObs("obs-3", "search_snippets", "The Old Forge Smokehouse")

	groups, diags := match.New().Group([]*place.Observation{a, b, c})
	require.Empty(t, diags)
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.Equal(t, 1, g.Size())
	}
}

func TestGroupFingerprint(t *testing.T) {
	// The fingerprint tier catches a name identical to a non-seed member
	// when fuzzy similarity against the group's representative fails.
	a := testObs("obs-1", "places_api", "West Park Padel Club")
	a.ExternalID = "reg:9"
	b := testObs("obs-2", "facility_registry", "WP Padel")
	b.ExternalID = "reg:9"
	c := testObs("obs-3", "search_snippets", "WP Padel")

	groups, diags := match.New().Group([]*place.Observation{a, b, c})
	require.Empty(t, diags)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"obs-1", "obs-2", "obs-3"}, groups[0].IDs())
	assert.Equal(t, place.TierFingerprint, groups[0].Tiers["obs-3"])
}

func TestGroupRehome(t *testing.T) {
	// b joins a provisionally on name similarity; c then shares a strong
	// id with b. The strong evidence pulls b out of a's group into c's.
	a := testObs("obs-1", "places_api", "Meadowbank Sports Centre")
	b := testObs("obs-2", "search_snippets", "Meadowbank Sports Center")
	b.ExternalID = "osm:77"
	c := testObs("obs-3", "facility_registry", "The Meadowbank Complex")
	c.ExternalID = "osm:77"

	groups, diags := match.New().Group([]*place.Observation{a, b, c})
	require.Empty(t, diags)
	require.Len(t, groups, 2)

	assert.Equal(t, []string{"obs-1"}, groups[0].IDs())
	assert.Equal(t, []string{"obs-2", "obs-3"}, groups[1].IDs())
	assert.Equal(t, place.TierStrongID, groups[1].Tiers["obs-2"])
	assert.Equal(t, place.TierSeed, groups[1].Tiers["obs-3"])
}

func TestGroupRehomeViaGeo(t *testing.T) {
	// Geo evidence re-homes a provisional member the same way strong ids do.
	a := testObs("obs-1", "places_api", "Meadowbank Sports Centre")
	b := testObs("obs-2", "open_data", "Meadowbank Sports Center")
	b.Latitude, b.Longitude = ptr(55.9621), ptr(-3.1530)
	c := testObs("obs-3", "charging_registry", "Meadowbank Sports Center")
	c.Latitude, c.Longitude = ptr(55.9621), ptr(-3.1530)

	groups, diags := match.New().Group([]*place.Observation{a, b, c})
	require.Empty(t, diags)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"obs-1"}, groups[0].IDs())
	assert.Equal(t, []string{"obs-2", "obs-3"}, groups[1].IDs())
	assert.Equal(t, place.TierGeo, groups[1].Tiers["obs-2"])
}

func TestGroupMergesEstablishedGroups(t *testing.T) {
	// c joins b's group on the strong id before its geo key is ever
	// compared, leaving a and c geo-equal across two groups. When d then
	// matches both on geo, the established groups collapse into one.
	a := testObs("obs-1", "places_api", "Meadowbank Sports Centre")
	a.Latitude, a.Longitude = ptr(55.9621), ptr(-3.1530)
	b := testObs("obs-2", "charging_registry", "Meadowbank East Chargepoint")
	b.ExternalID = "ocm:12"
	c := testObs("obs-3", "open_data", "Meadowbank Sports Centre")
	c.ExternalID = "ocm:12"
	c.Latitude, c.Longitude = ptr(55.9621), ptr(-3.1530)
	d := testObs("obs-4", "poi_registry", "Meadowbank Sports Centre")
	d.Latitude, d.Longitude = ptr(55.9621), ptr(-3.1530)

	groups, diags := match.New().Group([]*place.Observation{a, b, c, d})
	require.Empty(t, diags)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"obs-1", "obs-2", "obs-3", "obs-4"}, groups[0].IDs())
	assert.Equal(t, place.TierStrongID, groups[0].Tiers["obs-3"])
	assert.Equal(t, place.TierGeo, groups[0].Tiers["obs-4"])
}

func TestGroupPlaceholderExternalID(t *testing.T) {
	// Placeholder external ids are missing values; they must not link
	// unrelated observations.
	a := testObs("obs-1", "open_data", "Harbour Light Cinema")
	a.ExternalID = "-"
	b := testObs("obs-2", "open_data", "The Old Forge Smokehouse")
	b.ExternalID = "-"

	groups, _ := match.New().Group([]*place.Observation{a, b})
	assert.Len(t, groups, 2)
}

func TestGroupMalformed(t *testing.T) {
	a := testObs("obs-1", "places_api", "West Park Padel")
	bad := testObs("obs-2", "search_snippets", "  ")

	groups, diags := match.New().Group([]*place.Observation{a, bad})
	require.Len(t, groups, 1)
	require.Len(t, diags, 1)
	assert.Equal(t, "obs-2", diags[0].ObservationID)
	assert.Equal(t, place.ConnectorID("search_snippets"), diags[0].ConnectorID)
	assert.Contains(t, diags[0].Reason, "name is missing")
	assert.Error(t, diags[0].Err)
}

func TestGroupEmptyInput(t *testing.T) {
	groups, diags := match.New().Group(nil)
	assert.Empty(t, groups)
	assert.Empty(t, diags)
}

func TestGroupReplayStability(t *testing.T) {
	build := func() []*place.Observation {
		a := testObs("obs-1", "places_api", "Meadowbank Sports Centre")
		b := testObs("obs-2", "search_snippets", "Meadowbank Sports Center")
		b.ExternalID = "osm:77"
		c := testObs("obs-3", "facility_registry", "The Meadowbank Complex")
		c.ExternalID = "osm:77"
		d := testObs("obs-4", "open_data", "Harbour Light Cinema")
		e := testObs("obs-5", "poi_registry", "West Park Padel")
		e.Latitude, e.Longitude = ptr(55.9703), ptr(-3.1719)
		return []*place.Observation{a, b, c, d, e}
	}

	matcher := match.New()
	base, _ := matcher.Group(build())
	want := groupIDs(base)

	perms := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, perm := range perms {
		obs := build()
		shuffled := make([]*place.Observation, len(obs))
		for i, j := range perm {
			shuffled[i] = obs[j]
		}
		groups, _ := matcher.Group(shuffled)
		if diff := cmp.Diff(want, groupIDs(groups)); diff != "" {
			t.Errorf("groups differ for permutation %v (-want +got):\n%s", perm, diff)
		}
	}
}

func TestMatcherOptions(t *testing.T) {
	t.Run("threshold blocks fuzzy pair", func(t *testing.T) {
		a := testObs("obs-1", "places_api", "Meadowbank Sports Centre")
		b := testObs("obs-2", "search_snippets", "Meadowbank Sports Center")

		groups, _ := match.New(match.WithThreshold(95)).Group([]*place.Observation{a, b})
		assert.Len(t, groups, 2)
	})

	t.Run("precision widens geo cells", func(t *testing.T) {
		a := testObs("obs-1", "places_api", "West Park Padel")
		a.Latitude, a.Longitude = ptr(55.971), ptr(-3.174)
		b := testObs("obs-2", "open_data", "West Park Padel")
		b.Latitude, b.Longitude = ptr(55.974), ptr(-3.171)

		groups, _ := match.New(match.WithGeoPrecision(2)).Group([]*place.Observation{a, b})
		require.Len(t, groups, 1)
		assert.Equal(t, place.TierGeo, groups[0].Tiers["obs-2"])
	})

	t.Run("out of range values keep defaults", func(t *testing.T) {
		m := match.New(match.WithThreshold(0), match.WithThreshold(101), match.WithGeoPrecision(-1))
		assert.Equal(t, 85, m.Threshold())
		assert.Equal(t, 4, m.GeoPrecision())
	})
}

func BenchmarkGroup(b *testing.B) {
	observations := make([]*place.Observation, 0, 60)
	names := []string{
		"Meadowbank Sports Centre", "Harbour Light Cinema", "West Park Padel",
		"The Old Forge Smokehouse", "Granton Climbing Arena", "Leith Victoria Baths",
	}
	for i := 0; i < 60; i++ {
		o := testObs(fmt.Sprintf("obs-%03d", i), "places_api", names[i%len(names)])
		observations = append(observations, o)
	}
	matcher := match.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		matcher.Group(observations)
	}
}
