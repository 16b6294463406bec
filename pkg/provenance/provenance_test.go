package provenance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/placemap/pkg/provenance"
)

func TestTracker(t *testing.T) {
	tracker := provenance.NewTracker()
	tracker.Record("name", "places_api")
	tracker.Record("dimensions.tags", "search_snippets", "places_api")
	tracker.Record("dimensions.tags", "places_api") // duplicate is a no-op
	tracker.Record("latitude")                      // no connectors is a no-op
	tracker.Record("phone", "")                     // empty ids are skipped

	m := tracker.Map()

	assert.Equal(t, []string{"places_api"}, m.Contributors("name"))
	assert.Equal(t, []string{"places_api", "search_snippets"}, m.Contributors("dimensions.tags"))
	assert.Nil(t, m.Contributors("latitude"))
	assert.Nil(t, m.Contributors("phone"))
	assert.Equal(t, []string{"dimensions.tags", "name"}, m.Fields())
}

func TestTrackerMapIsACopy(t *testing.T) {
	tracker := provenance.NewTracker()
	tracker.Record("name", "places_api")

	before := tracker.Map()
	tracker.Record("name", "search_snippets")

	assert.Equal(t, []string{"places_api"}, before.Contributors("name"))
	assert.Equal(t, []string{"places_api", "search_snippets"}, tracker.Map().Contributors("name"))
}

func TestMapCopy(t *testing.T) {
	original := provenance.Map{"name": {"places_api"}}
	copied := original.Copy()
	copied["name"][0] = "mutated"

	assert.Equal(t, []string{"places_api"}, original["name"])

	var nilMap provenance.Map
	assert.Nil(t, nilMap.Copy())
}

func TestMapString(t *testing.T) {
	m := provenance.Map{
		"name":     {"places_api"},
		"latitude": {"places_api", "facility_registry"},
	}
	assert.Equal(t, "latitude: places_api, facility_registry\nname: places_api\n", m.String())
}
