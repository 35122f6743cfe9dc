package domain

import "sort"

// TopN keeps the n paths with the largest total time. The result is ordered
// ascending by TimeSum; when stats already fit within n they are returned
// as given.
func TopN(stats []PathStats, n int) []PathStats {
	if n < 0 {
		n = 0
	}
	if len(stats) <= n {
		return stats
	}

	sorted := make([]PathStats, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeSum < sorted[j].TimeSum
	})
	return sorted[len(sorted)-n:]
}

// SortByTimeSumDesc orders stats for display, largest total time first.
func SortByTimeSumDesc(stats []PathStats) []PathStats {
	sorted := make([]PathStats, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeSum > sorted[j].TimeSum
	})
	return sorted
}
