package match

import (
	"math"
	"sort"
	"strings"

	"github.com/agentstation/placemap/pkg/place"
)

// TokenSetRatio scores the similarity of two venue names on a 0-100
// scale. Both names are normalized and reduced to unique sorted tokens;
// the score is the best Levenshtein ratio among the token intersection
// and each side's full token string, so word order, duplicate words,
// and extra qualifier words do not depress the score while spelling
// variants ("Centre" vs "Center") still score high. Names with no
// alphanumeric tokens score 0.
func TokenSetRatio(a, b string) int {
	tokensA := place.NameTokens(a)
	tokensB := place.NameTokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	sort.Strings(tokensA)
	sort.Strings(tokensB)

	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}
	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}

	var common, restA, restB []string
	for _, t := range tokensA {
		if _, ok := setB[t]; ok {
			common = append(common, t)
		} else {
			restA = append(restA, t)
		}
	}
	for _, t := range tokensB {
		if _, ok := setA[t]; !ok {
			restB = append(restB, t)
		}
	}

	// Identical token sets compare equal regardless of order.
	if len(restA) == 0 && len(restB) == 0 {
		return 100
	}

	base := strings.Join(common, " ")
	fullA := strings.Join(append(append([]string{}, common...), restA...), " ")
	fullB := strings.Join(append(append([]string{}, common...), restB...), " ")

	best := levRatio(base, fullA)
	if r := levRatio(base, fullB); r > best {
		best = r
	}
	if r := levRatio(fullA, fullB); r > best {
		best = r
	}
	return best
}

// levRatio converts Levenshtein distance into a 0-100 similarity score
// relative to the longer input.
func levRatio(a, b string) int {
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// levenshtein computes the unit-cost edit distance between two strings,
// operating on runes.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
