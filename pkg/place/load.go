package place

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/agentstation/placemap/pkg/errors"
)

// ObservationFile is the on-disk fixture format: a YAML document with a
// single observations list. It is a harness convenience for the CLI and
// tests; library callers pass []*Observation directly.
type ObservationFile struct {
	Observations []*Observation `yaml:"observations"`
}

// LoadObservations reads a YAML observation fixture from path. Records
// without an id are assigned a fresh UUID so every observation enters
// the pipeline with the unique record id the ordering cascade relies on.
func LoadObservations(path string) ([]*Observation, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from operator input.
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseObservations(data, path)
}

// ParseObservations decodes a YAML observation fixture. The name is
// used for error reporting only.
func ParseObservations(data []byte, name string) ([]*Observation, error) {
	var file ObservationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	for _, o := range file.Observations {
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
	}
	return file.Observations, nil
}
