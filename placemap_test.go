package placemap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placemap"
	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/store/memory"
	"github.com/agentstation/placemap/pkg/trust"
)

func TestNewDefaults(t *testing.T) {
	pm, err := placemap.New()
	require.NoError(t, err)
	defer pm.Close()

	require.NotNil(t, pm.Store())
	require.NotNil(t, pm.Trust())
	assert.Equal(t, trust.Default().Len(), pm.Trust().Len())
	assert.Greater(t, pm.Trust().Len(), 0)
}

func TestNewWithOptions(t *testing.T) {
	model := trust.New(
		trust.Record{ConnectorID: "places_api", Tier: 3, Score: 0.9, GeoCapable: true},
	)
	st := memory.New()

	pm, err := placemap.New(
		placemap.WithTrust(model),
		placemap.WithStore(st),
		placemap.WithMatchThreshold(90),
		placemap.WithConcurrency(2),
	)
	require.NoError(t, err)
	defer pm.Close()

	assert.Same(t, model, pm.Trust())
	assert.Same(t, st, pm.Store())
}

func TestNewRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  placemap.Option
	}{
		{name: "nil store", opt: placemap.WithStore(nil)},
		{name: "nil trust", opt: placemap.WithTrust(nil)},
		{name: "threshold too low", opt: placemap.WithMatchThreshold(-1)},
		{name: "threshold too high", opt: placemap.WithMatchThreshold(101)},
		{name: "zero concurrency", opt: placemap.WithConcurrency(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := placemap.New(tt.opt)
			assert.Nil(t, pm)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)
		})
	}
}

func TestNewWithTrustFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trust.yaml")
	table := `connectors:
  - connector_id: places_api
    tier: 3
    score: 0.9
    geo_capable: true
  - connector_id: search_snippets
    tier: 1
    score: 0.4
`
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	pm, err := placemap.New(placemap.WithTrustFile(path))
	require.NoError(t, err)
	defer pm.Close()

	assert.Equal(t, 2, pm.Trust().Len())
	record := pm.Trust().Find("places_api")
	require.NotNil(t, record)
	assert.True(t, record.GeoCapable)
}

func TestNewWithMissingTrustFile(t *testing.T) {
	pm, err := placemap.New(placemap.WithTrustFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Nil(t, pm)
	require.Error(t, err)
}

func TestCloseReleasesStore(t *testing.T) {
	st := memory.New()
	pm, err := placemap.New(placemap.WithStore(st))
	require.NoError(t, err)

	require.NoError(t, pm.Close())
	_, err = st.Count(context.Background())
	assert.ErrorIs(t, err, errors.ErrStoreClosed)
}
