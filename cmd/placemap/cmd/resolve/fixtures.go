package resolve

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"github.com/agentstation/placemap/pkg/errors"
	"github.com/agentstation/placemap/pkg/place"
)

// batch is the on-disk observation document shape.
type batch struct {
	Observations []*place.Observation `json:"observations" yaml:"observations"`
}

// LoadObservations reads observation batches from the given paths in
// order. A path of "-" reads standard input. Files ending in .json are
// decoded as JSON, everything else as YAML. Observations without an id
// are assigned a generated one so diagnostics can always reference the
// record.
func LoadObservations(paths []string) ([]*place.Observation, error) {
	var all []*place.Observation
	for _, path := range paths {
		observations, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, observations...)
	}
	return all, nil
}

func loadFile(path string) ([]*place.Observation, error) {
	name := path
	var data []byte
	var err error

	if path == "-" {
		name = "stdin"
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.WrapIO("read", name, err)
	}

	return Decode(data, name)
}

// Decode parses one observation document. The document is either a
// mapping with an observations key or a bare observation list.
func Decode(data []byte, name string) ([]*place.Observation, error) {
	unmarshal := yaml.Unmarshal
	format := "yaml"
	if strings.HasSuffix(name, ".json") {
		unmarshal = json.Unmarshal
		format = "json"
	}

	var doc batch
	if err := unmarshal(data, &doc); err == nil && doc.Observations != nil {
		return assignIDs(doc.Observations), nil
	}

	var list []*place.Observation
	if err := unmarshal(data, &list); err != nil {
		return nil, errors.WrapParse(format, name, err)
	}
	return assignIDs(list), nil
}

func assignIDs(observations []*place.Observation) []*place.Observation {
	for _, obs := range observations {
		if obs != nil && obs.ID == "" {
			obs.ID = uuid.NewString()
		}
	}
	return observations
}
