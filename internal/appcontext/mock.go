package appcontext

import (
	"github.com/agentstation/placemap"
	"github.com/agentstation/placemap/pkg/errors"
)

// Mock implements Interface through settable function fields so command
// tests can wire in a seeded client without building a full App.
type Mock struct {
	PlacemapFunc     func() (placemap.Placemap, error)
	OutputFormatFunc func() string
}

var _ Interface = (*Mock)(nil)

// Placemap calls PlacemapFunc. Leaving the field nil is a test bug, so
// it fails loudly instead of handing the command a nil client.
func (m *Mock) Placemap() (placemap.Placemap, error) {
	if m.PlacemapFunc == nil {
		return nil, errors.New("appcontext: Mock.PlacemapFunc not set")
	}
	return m.PlacemapFunc()
}

// OutputFormat calls OutputFormatFunc, or returns "" so the command
// falls back to format auto-detection.
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc == nil {
		return ""
	}
	return m.OutputFormatFunc()
}
