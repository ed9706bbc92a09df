package internal

import (
	"sort"

	"github.com/sansecio/hexpat/pattern"
)

// KindCounts counts the patterns of each kind in the trees under roots.
func KindCounts(roots []pattern.Pattern) map[string]int {
	counts := make(map[string]int)
	for _, root := range roots {
		pattern.Walk(root, func(p pattern.Pattern) bool {
			counts[p.Kind().String()]++
			return true
		})
	}
	return counts
}

func SumValues(m map[string]int) int {
	sum := 0
	for _, v := range m {
		sum += v
	}
	return sum
}

func SortByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
