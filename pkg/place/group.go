package place

import "sort"

// MatchTier identifies which tier of the identity cascade admitted an
// observation into its group.
type MatchTier string

// Match tiers, strongest first.
const (
	// TierSeed marks the observation that opened the group.
	TierSeed MatchTier = "seed"
	// TierStrongID marks admission by a shared external identifier.
	TierStrongID MatchTier = "strong_id"
	// TierGeo marks admission by the normalized name + coordinate key.
	TierGeo MatchTier = "geo"
	// TierFuzzyName marks provisional admission by token-set name similarity.
	TierFuzzyName MatchTier = "fuzzy_name"
	// TierFingerprint marks admission by the content fingerprint fallback.
	TierFingerprint MatchTier = "fingerprint"
)

// String returns the string representation of a MatchTier.
func (t MatchTier) String() string {
	return string(t)
}

// CandidateGroup is an unordered collection of observations believed to
// represent one real-world entity. Groups are transient, scoped to a
// single merge pass; ordering for merge is always recomputed, never
// taken from member order.
type CandidateGroup struct {
	Observations []*Observation       // Members, in matcher admission order
	Tiers        map[string]MatchTier // Observation ID → admitting tier
}

// Size returns the number of member observations.
func (g *CandidateGroup) Size() int {
	return len(g.Observations)
}

// IDs returns the sorted record ids of the group's members.
func (g *CandidateGroup) IDs() []string {
	ids := make([]string, 0, len(g.Observations))
	for _, o := range g.Observations {
		ids = append(ids, o.ID)
	}
	sort.Strings(ids)
	return ids
}

// Connectors returns the sorted unique connector ids contributing to
// the group.
func (g *CandidateGroup) Connectors() []ConnectorID {
	seen := make(map[ConnectorID]struct{}, len(g.Observations))
	out := make([]ConnectorID, 0, len(g.Observations))
	for _, o := range g.Observations {
		if _, ok := seen[o.ConnectorID]; ok {
			continue
		}
		seen[o.ConnectorID] = struct{}{}
		out = append(out, o.ConnectorID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
