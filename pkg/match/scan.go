package match

import (
	"math"
	"sort"
	"strconv"

	"github.com/agentstation/placemap/pkg/place"
)

// member tracks one grouped observation: the evidence tier that admitted
// it, the observation it matched against, and its current group.
type member struct {
	obs    *place.Observation
	tier   place.MatchTier
	anchor string // Record id of the observation this one matched against; empty for seeds
	grp    *group
}

// group is the mutable scan-internal shape of a candidate group. The
// seed is the observation that opened the group and serves as the
// representative name for the fuzzy tier.
type group struct {
	seed    *place.Observation
	members []*member
}

// scan holds the state of one grouping pass: the groups opened so far
// and the identity indexes the cascade probes. Index buckets keep
// members in admission order, which makes every "first match" below
// deterministic given the sorted input.
type scan struct {
	matcher       *Matcher
	groups        []*group
	byExternalID  map[string][]*member
	byGeoKey      map[string][]*member
	byFingerprint map[string][]*member
}

func newScan(m *Matcher) *scan {
	return &scan{
		matcher:       m,
		byExternalID:  make(map[string][]*member),
		byGeoKey:      make(map[string][]*member),
		byFingerprint: make(map[string][]*member),
	}
}

// place runs one observation through the cascade, first match wins.
// Missing coordinates fail the geo tier silently and fall through, as
// do placeholder external ids.
func (s *scan) place(obs *place.Observation) {
	if !place.MissingString(obs.ExternalID) {
		if matched := s.byExternalID[obs.ExternalID]; len(matched) > 0 {
			s.admit(obs, place.TierStrongID, matched)
			return
		}
	}
	if obs.HasCoordinates() {
		if matched := s.byGeoKey[s.geoKey(obs)]; len(matched) > 0 {
			s.admit(obs, place.TierGeo, matched)
			return
		}
	}
	if grp := s.bestFuzzy(obs); grp != nil {
		s.join(obs, place.TierFuzzyName, grp.seed.ID, grp)
		return
	}
	if matched := s.byFingerprint[obs.Fingerprint()]; len(matched) > 0 {
		s.join(obs, place.TierFingerprint, matched[0].obs.ID, matched[0].grp)
		return
	}
	s.open(obs)
}

// admit joins an observation on strong id or geo evidence. Matched
// groups where a member holds non-provisional residency merge into the
// home group wholesale; matched members resident only via a provisional
// fuzzy match re-home into the home group together with their anchor
// sub-clusters, upgraded to the stronger tier.
func (s *scan) admit(obs *place.Observation, tier place.MatchTier, matched []*member) {
	var home *group
	for _, m := range matched {
		if m.tier != place.TierFuzzyName {
			home = m.grp
			break
		}
	}

	// Every matched member is only provisionally resident: the incoming
	// observation itself becomes the home the evidence pulls them into.
	seeded := home == nil
	if seeded {
		home = s.open(obs)
	}

	for _, m := range matched {
		if m.grp == home {
			continue
		}
		if m.tier == place.TierFuzzyName {
			s.rehome(m, obs.ID, tier, home)
			continue
		}
		s.merge(m.grp, home)
	}

	if !seeded {
		s.join(obs, tier, matched[0].obs.ID, home)
	}
}

// join admits an observation into a group and indexes its identity keys.
func (s *scan) join(obs *place.Observation, tier place.MatchTier, anchor string, grp *group) {
	m := &member{obs: obs, tier: tier, anchor: anchor, grp: grp}
	grp.members = append(grp.members, m)
	s.index(m)
}

// open starts a new group seeded by the observation.
func (s *scan) open(obs *place.Observation) *group {
	grp := &group{seed: obs}
	s.groups = append(s.groups, grp)
	m := &member{obs: obs, tier: place.TierSeed, grp: grp}
	grp.members = append(grp.members, m)
	s.index(m)
	return grp
}

// rehome moves a provisionally resident member and its anchor
// sub-cluster into the home group. The member itself is upgraded to the
// stronger tier; its sub-cluster keeps the tiers it was admitted with.
func (s *scan) rehome(m *member, anchorID string, tier place.MatchTier, home *group) {
	moved := s.subtree(m)
	removeMembers(m.grp, moved)
	m.tier = tier
	m.anchor = anchorID
	for _, mv := range moved {
		mv.grp = home
		home.members = append(home.members, mv)
	}
}

// merge moves every member of src into dst wholesale, keeping tiers.
func (s *scan) merge(src, dst *group) {
	for _, m := range src.members {
		m.grp = dst
		dst.members = append(dst.members, m)
	}
	src.members = nil
}

// subtree returns a member plus every member of its group anchored to
// it, directly or transitively.
func (s *scan) subtree(root *member) []*member {
	out := []*member{root}
	ids := map[string]struct{}{root.obs.ID: {}}
	for {
		grew := false
		for _, m := range root.grp.members {
			if _, ok := ids[m.obs.ID]; ok {
				continue
			}
			if _, ok := ids[m.anchor]; ok {
				ids[m.obs.ID] = struct{}{}
				out = append(out, m)
				grew = true
			}
		}
		if !grew {
			return out
		}
	}
}

// bestFuzzy returns the group whose seed name scores highest against the
// observation name, provided the score clears the threshold. Ties keep
// the earliest group so replay stays deterministic.
func (s *scan) bestFuzzy(obs *place.Observation) *group {
	var best *group
	bestScore := 0
	for _, grp := range s.groups {
		if len(grp.members) == 0 {
			continue
		}
		score := TokenSetRatio(obs.Name, grp.seed.Name)
		if score >= s.matcher.threshold && score > bestScore {
			best = grp
			bestScore = score
		}
	}
	return best
}

// index records the member under every identity key it carries.
func (s *scan) index(m *member) {
	if !place.MissingString(m.obs.ExternalID) {
		s.byExternalID[m.obs.ExternalID] = append(s.byExternalID[m.obs.ExternalID], m)
	}
	if m.obs.HasCoordinates() {
		key := s.geoKey(m.obs)
		s.byGeoKey[key] = append(s.byGeoKey[key], m)
	}
	fp := m.obs.Fingerprint()
	s.byFingerprint[fp] = append(s.byFingerprint[fp], m)
}

// geoKey builds the geo tier's identity key: normalized name plus the
// coordinate pair rounded to the configured precision.
func (s *scan) geoKey(o *place.Observation) string {
	precision := s.matcher.geoPrecision
	lat := roundCoord(*o.Latitude, precision)
	lon := roundCoord(*o.Longitude, precision)
	return place.NormalizeName(o.Name) + "|" +
		strconv.FormatFloat(lat, 'f', precision, 64) + "," +
		strconv.FormatFloat(lon, 'f', precision, 64)
}

// result converts the surviving scan groups into candidate groups,
// ordered by seed record id. Groups emptied by wholesale merges are
// dropped.
func (s *scan) result() []*place.CandidateGroup {
	out := make([]*place.CandidateGroup, 0, len(s.groups))
	for _, grp := range s.groups {
		if len(grp.members) == 0 {
			continue
		}
		cg := &place.CandidateGroup{
			Observations: make([]*place.Observation, 0, len(grp.members)),
			Tiers:        make(map[string]place.MatchTier, len(grp.members)),
		}
		for _, m := range grp.members {
			cg.Observations = append(cg.Observations, m.obs)
			cg.Tiers[m.obs.ID] = m.tier
		}
		out = append(out, cg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Observations[0].ID < out[j].Observations[0].ID
	})
	return out
}

// removeMembers drops the moved members from a group, preserving the
// order of those kept.
func removeMembers(grp *group, moved []*member) {
	drop := make(map[*member]struct{}, len(moved))
	for _, m := range moved {
		drop[m] = struct{}{}
	}
	kept := grp.members[:0]
	for _, m := range grp.members {
		if _, ok := drop[m]; !ok {
			kept = append(kept, m)
		}
	}
	grp.members = kept
}

// roundCoord rounds a coordinate to the given number of decimal places.
// Negative zero normalizes to zero so key strings stay stable across
// the sign boundary.
func roundCoord(v float64, precision int) float64 {
	scale := math.Pow10(precision)
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}
