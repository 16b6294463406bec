package place

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/errors"
)

// Observation is one connector's extracted view of a candidate entity.
// Observations are created once by the extraction stage and never
// modified afterwards; they are owned by their producing run.
type Observation struct {
	// Identity
	ID          string      `json:"id" yaml:"id"`                                         // Record id, unique within a run (loader assigns one if absent)
	ConnectorID ConnectorID `json:"connector_id" yaml:"connector_id"`                     // Producing connector
	ExternalID  string      `json:"external_id,omitempty" yaml:"external_id,omitempty"`   // Connector-scoped or cross-source identifier
	EntityClass EntityClass `json:"entity_class,omitempty" yaml:"entity_class,omitempty"` // Venue class
	Name        string      `json:"name" yaml:"name"`                                     // Display name (mandatory)

	// Geo
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`   // WGS84 latitude, nil when not reported
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"` // WGS84 longitude, nil when not reported

	// Narrative
	Summary     string `json:"summary,omitempty" yaml:"summary,omitempty"`         // Short narrative text
	Description string `json:"description,omitempty" yaml:"description,omitempty"` // Long narrative text

	// Contact and location scalars
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Address  string `json:"address,omitempty" yaml:"address,omitempty"`
	Postcode string `json:"postcode,omitempty" yaml:"postcode,omitempty"`
	City     string `json:"city,omitempty" yaml:"city,omitempty"`

	// Canonical dimension arrays, keyed by dimension name (tags, amenities, ...)
	Dimensions map[string][]string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`

	// Modules is the nested, schema-variable attribute tree
	Modules Module `json:"modules,omitempty" yaml:"modules,omitempty"`

	// Extraction metadata
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"` // Extraction confidence in [0,1]
	Priority   *int     `json:"priority,omitempty" yaml:"priority,omitempty"`     // Declared priority metadata

	// ObservedAt records when the producing run captured this observation
	ObservedAt utc.Time `json:"observed_at,omitempty" yaml:"observed_at,omitempty"`
}

// Validate checks that the observation carries the mandatory scalars.
// A missing or absurdly long name makes the observation malformed; it
// must be excluded from grouping rather than silently merged.
func (o *Observation) Validate() error {
	if o.ConnectorID == "" {
		return errors.NewMalformedObservationError(o.ID, "", "connector_id is empty")
	}
	if MissingString(o.Name) {
		return errors.NewMalformedObservationError(o.ID, string(o.ConnectorID), "name is missing")
	}
	if len(o.Name) > constants.MaxNameLength {
		return errors.NewMalformedObservationError(o.ID, string(o.ConnectorID), "name is too long")
	}
	return nil
}

// HasCoordinates reports whether the observation carries both latitude
// and longitude.
func (o *Observation) HasCoordinates() bool {
	return o.Latitude != nil && o.Longitude != nil
}

// Fingerprint returns the observation's content fingerprint, a stable
// hash of the normalized name and entity class. It is the last-resort
// grouping key of the identity cascade.
func (o *Observation) Fingerprint() string {
	content := NormalizeName(o.Name) + "\n" + strings.ToLower(string(o.EntityClass))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Completeness counts the observation's non-missing fields: each scalar,
// the coordinate pair, each non-empty dimension array, and a non-empty
// module tree contribute one each. Used as a merge tie-break.
func (o *Observation) Completeness() int {
	count := 0
	for _, s := range []string{
		o.ExternalID, string(o.EntityClass), o.Name,
		o.Summary, o.Description,
		o.Phone, o.Website, o.Email, o.Address, o.Postcode, o.City,
	} {
		if !MissingString(s) {
			count++
		}
	}
	if o.HasCoordinates() {
		count++
	}
	for _, values := range o.Dimensions {
		if len(values) > 0 {
			count++
		}
	}
	if len(o.Modules) > 0 {
		count++
	}
	return count
}
