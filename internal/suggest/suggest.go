// Package suggest produces "did you mean" hints for misspelled names.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxDistance bounds the edit distance accepted for a typo suggestion.
const maxDistance = 3

// Closest returns the candidate that best matches name, or "" when nothing
// is close enough. Candidates containing name as a case-insensitive
// subsequence win; otherwise the one with the smallest edit distance.
func Closest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", maxDistance+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(name, c); d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist > maxDistance || bestDist >= len(name) {
		return ""
	}
	return best
}

// Hint formats a suggestion suffix for an error message.
func Hint(name string, candidates []string) string {
	if s := Closest(name, candidates); s != "" && s != name {
		return ". Did you mean '" + s + "'?"
	}
	return ""
}
