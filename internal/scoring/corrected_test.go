package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectedSeconds(t *testing.T) {
	t.Run("reference yardstick is identity at full distance", func(t *testing.T) {
		corrected, ok := CorrectedSeconds(600, 1000, 3, 3)
		require.True(t, ok)
		assert.InDelta(t, 600, corrected, 0.001)
	})

	t.Run("slower class corrects downwards", func(t *testing.T) {
		// Yardstick 1200 means the class is expected to be 20% slower,
		// so the same elapsed time corrects to a faster comparable time.
		corrected, ok := CorrectedSeconds(600, 1200, 3, 3)
		require.True(t, ok)
		assert.InDelta(t, 500, corrected, 0.001)
	})

	t.Run("fewer laps projects pace up to fleet distance", func(t *testing.T) {
		// 2 laps in 400s at the reference yardstick projects to 600s
		// over the leader's 3 laps.
		corrected, ok := CorrectedSeconds(400, 1000, 2, 3)
		require.True(t, ok)
		assert.InDelta(t, 600, corrected, 0.001)
	})

	t.Run("not comparable without timing data", func(t *testing.T) {
		_, ok := CorrectedSeconds(0, 1000, 3, 3)
		assert.False(t, ok)

		_, ok = CorrectedSeconds(600, 0, 3, 3)
		assert.False(t, ok)

		_, ok = CorrectedSeconds(600, 1000, 0, 3)
		assert.False(t, ok)
	})

	t.Run("lower yardstick never beats higher on equal sailing", func(t *testing.T) {
		fast, ok := CorrectedSeconds(600, 1000, 3, 3)
		require.True(t, ok)
		slow, ok := CorrectedSeconds(600, 1100, 3, 3)
		require.True(t, ok)
		assert.Greater(t, fast, slow)
	})
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "0:00"},
		{"under a minute", 59, "0:59"},
		{"minutes and seconds", 754, "12:34"},
		{"exactly an hour", 3600, "1:00:00"},
		{"hours with padding", 3661, "1:01:01"},
		{"sub-second precision dropped", 90.9, "1:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSeconds(tt.seconds))
		})
	}
}
