package trust

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/placemap/internal/embedded"
	"github.com/agentstation/placemap/pkg/errors"
)

// Table is the on-disk trust table format: a YAML document with a
// connectors list.
type Table struct {
	Connectors []Record `yaml:"connectors"`
}

// Load reads a YAML trust table from path and builds a Model.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from operator input.
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a YAML trust table. The name is used for error
// reporting only.
func Parse(data []byte, name string) (*Model, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.WrapParse("yaml", name, err)
	}
	seen := make(map[string]struct{}, len(table.Connectors))
	for _, rec := range table.Connectors {
		if rec.ConnectorID == "" {
			return nil, errors.NewValidationError("connector_id", "", "trust record missing connector_id")
		}
		if _, ok := seen[string(rec.ConnectorID)]; ok {
			return nil, errors.NewValidationError("connector_id", rec.ConnectorID, "duplicate trust record")
		}
		seen[string(rec.ConnectorID)] = struct{}{}
	}
	return New(table.Connectors...), nil
}

// Default returns a Model built from the embedded default trust table.
// The embedded table is validated at test time, so a parse failure here
// means a broken build.
func Default() *Model {
	model, err := Parse(embedded.TrustTable, "embedded trust table")
	if err != nil {
		panic(err)
	}
	return model
}
