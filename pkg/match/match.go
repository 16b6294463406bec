// Package match partitions connector observations into candidate groups
// of records believed to describe the same real-world place. A four-tier
// identity cascade decides membership: shared external ids, normalized
// name plus rounded coordinates, fuzzy token-set name similarity, and a
// content fingerprint fallback. Fuzzy admissions are provisional: when
// stronger evidence for a provisionally grouped observation arrives
// later in the same scan, the observation and its anchor sub-cluster
// re-home into the stronger group.
package match

import (
	"sort"

	"github.com/agentstation/placemap/pkg/constants"
	"github.com/agentstation/placemap/pkg/logging"
	"github.com/agentstation/placemap/pkg/place"
)

// Matcher groups observations through the identity cascade. The zero
// threshold and precision come from constants; both are tunable
// defaults, not protocol.
type Matcher struct {
	threshold    int
	geoPrecision int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the minimum token-set similarity score (1-100) for
// the fuzzy name tier. Out-of-range values keep the default.
func WithThreshold(threshold int) Option {
	return func(m *Matcher) {
		if threshold > 0 && threshold <= 100 {
			m.threshold = threshold
		}
	}
}

// WithGeoPrecision sets how many decimal places coordinates are rounded
// to when building geo keys. Negative values keep the default.
func WithGeoPrecision(precision int) Option {
	return func(m *Matcher) {
		if precision >= 0 {
			m.geoPrecision = precision
		}
	}
}

// New creates a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		threshold:    constants.DefaultSimilarityThreshold,
		geoPrecision: constants.DefaultGeoPrecision,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Diagnostic records an observation excluded from grouping and why.
type Diagnostic struct {
	ObservationID string            `json:"observation_id" yaml:"observation_id"`
	ConnectorID   place.ConnectorID `json:"connector_id" yaml:"connector_id"`
	Reason        string            `json:"reason" yaml:"reason"`
	Err           error             `json:"-" yaml:"-"`
}

// Group partitions observations into candidate groups, each input
// covered exactly once. The scan canonicalizes input order by record id
// first, so any arrival order of the same observation set yields
// identical groups. Malformed observations are excluded and reported as
// diagnostics; matching itself never fails.
func (m *Matcher) Group(observations []*place.Observation) ([]*place.CandidateGroup, []Diagnostic) {
	sorted := make([]*place.Observation, len(observations))
	copy(sorted, observations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	s := newScan(m)

	var diagnostics []Diagnostic
	for _, obs := range sorted {
		if err := obs.Validate(); err != nil {
			logging.Warn().
				Err(err).
				Str("observation_id", obs.ID).
				Str("connector_id", obs.ConnectorID.String()).
				Msg("Excluding malformed observation from grouping")
			diagnostics = append(diagnostics, Diagnostic{
				ObservationID: obs.ID,
				ConnectorID:   obs.ConnectorID,
				Reason:        err.Error(),
				Err:           err,
			})
			continue
		}
		s.place(obs)
	}

	return s.result(), diagnostics
}

// Threshold returns the fuzzy name similarity threshold in use.
func (m *Matcher) Threshold() int {
	return m.threshold
}

// GeoPrecision returns the coordinate rounding precision in use.
func (m *Matcher) GeoPrecision() int {
	return m.geoPrecision
}
