package scoring

import (
	"math"
	"sort"
)

// CompactPositions turns a scorer's raw finishing order with
// tied-with-previous flags into display positions, the usual
// "1, T2, T2, 4" convention for dead heats.
//
// The first row is display position 1. A row flagged as tied shares the
// running position of its block; the next untied row jumps past the
// whole block, so two boats tied for second are both 2 and the boat
// after them is 4.
//
// tied holds each row's flag in raw finishing order; the returned
// slice is index-aligned with it.
func CompactPositions(tied []bool) []int {
	if len(tied) == 0 {
		return nil
	}

	display := make([]int, len(tied))
	display[0] = 1
	skip := 0

	for i := 1; i < len(tied); i++ {
		if tied[i] {
			display[i] = display[i-1]
			skip++
			continue
		}
		display[i] = display[i-1] + 1 + skip
		skip = 0
	}

	return display
}

// DiscardFloor is the fraction of the longest race card that still
// counts after discards.
const DiscardFloor = 0.66

// DiscardLimit returns how many races count toward a sailor's league
// total when the busiest sailor in the league sailed maxRaces.
func DiscardLimit(maxRaces int) int {
	return int(math.Ceil(float64(maxRaces) * DiscardFloor))
}

// BestScores sums a sailor's best `limit` scores. Sailors who sailed
// fewer races than the limit simply count all of them. The input slice
// is not modified.
func BestScores(scores []int, limit int) int {
	if limit > len(scores) {
		limit = len(scores)
	}

	sorted := make([]int, len(scores))
	copy(sorted, scores)
	// Descending, so the top slice is the best scores.
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	total := 0
	for _, s := range sorted[:limit] {
		total += s
	}
	return total
}
