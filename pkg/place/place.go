// Package place defines the core data model for venue resolution: the
// Observation records produced by data connectors, the CandidateGroups
// formed by identity matching, and the CanonicalEntity records produced
// by the merge pipeline.
//
// Observations are immutable once produced by extraction. All comparison
// logic (identity matching, merge strategies) works on the normalized
// forms exposed here rather than raw field values.
package place

// ConnectorID identifies a data connector that produces observations,
// such as "search_snippets" or "places_api".
type ConnectorID string

// String returns the string representation of a ConnectorID.
func (c ConnectorID) String() string {
	return string(c)
}

// EntityClass categorizes the kind of real-world venue an observation
// describes, such as "sports_centre" or "charging_station".
type EntityClass string

// String returns the string representation of an EntityClass.
func (c EntityClass) String() string {
	return string(c)
}
