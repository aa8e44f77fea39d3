package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompactPositions(t *testing.T) {
	tests := []struct {
		name string
		tied []bool
		want []int
	}{
		{"empty", nil, nil},
		{"single row", []bool{false}, []int{1}},
		{"no ties", []bool{false, false, false}, []int{1, 2, 3}},
		{"dead heat for first", []bool{false, true, false}, []int{1, 1, 3}},
		{"dead heat for second", []bool{false, false, true, false}, []int{1, 2, 2, 4}},
		{"three-way tie", []bool{false, true, true, false}, []int{1, 1, 1, 4}},
		{"two separate ties", []bool{false, true, false, true}, []int{1, 1, 3, 3}},
		{"tied flag on first row has no previous", []bool{true, false}, []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompactPositions(tt.tied))
		})
	}
}

func TestDiscardLimit(t *testing.T) {
	tests := []struct {
		maxRaces int
		want     int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{10, 7},
		{12, 8},
		{20, 14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DiscardLimit(tt.maxRaces), "maxRaces=%d", tt.maxRaces)
	}
}

func TestBestScores(t *testing.T) {
	t.Run("keeps only the best scores", func(t *testing.T) {
		assert.Equal(t, 27, BestScores([]int{14, 13, 2, 0}, 2))
	})

	t.Run("fewer races than limit counts everything", func(t *testing.T) {
		assert.Equal(t, 19, BestScores([]int{14, 5}, 7))
	})

	t.Run("zero limit", func(t *testing.T) {
		assert.Equal(t, 0, BestScores([]int{14, 13}, 0))
	})

	t.Run("input slice is not modified", func(t *testing.T) {
		scores := []int{2, 14, 5}
		BestScores(scores, 2)
		assert.Equal(t, []int{2, 14, 5}, scores)
	})
}
