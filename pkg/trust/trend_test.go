package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/semlayer/semgov/pkg/metric"
)

func TestTrend(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s := NewScorerWithClock(fixedClock(now))

	changesAt := func(days ...int) []metric.ChangeRecord {
		records := make([]metric.ChangeRecord, len(days))
		for i, d := range days {
			records[i] = metric.ChangeRecord{ChangedAt: daysAgo(now, d)}
		}

		return records
	}

	tests := []struct {
		name     string
		history  []metric.ChangeRecord
		expected Trend
	}{
		{
			name:     "no_history",
			history:  nil,
			expected: TrendStable,
		},
		{
			name:     "single_record",
			history:  changesAt(5),
			expected: TrendStable,
		},
		{
			name:     "burst_of_recent_changes",
			history:  changesAt(1, 2, 3, 5, 8, 13, 21, 25, 28, 29),
			expected: TrendImproving,
		},
		{
			name:     "activity_dropped_off",
			history:  changesAt(35, 38, 42, 50, 55, 59),
			expected: TrendDegrading,
		},
		{
			name:     "balanced_within_hysteresis",
			history:  changesAt(5, 10, 15, 40, 45),
			expected: TrendStable,
		},
		{
			name:     "old_records_ignored",
			history:  changesAt(100, 150, 200, 300),
			expected: TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Trend(tt.history))
		})
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected string
	}{
		{
			name:     "empty_series",
			scores:   nil,
			expected: "─",
		},
		{
			name:     "flat_series",
			scores:   []float64{50, 50, 50, 50},
			expected: "▄▄▄▄",
		},
		{
			name:     "single_value",
			scores:   []float64{72.5},
			expected: "▄",
		},
		{
			name:     "ascending",
			scores:   []float64{0, 100},
			expected: "▁█",
		},
		{
			name:     "descending",
			scores:   []float64{100, 0},
			expected: "█▁",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sparkline(tt.scores))
		})
	}
}

func TestLevels(t *testing.T) {
	assert.Empty(t, Levels(nil))
	assert.Equal(t, []int{3, 3, 3}, Levels([]float64{42, 42, 42}))
	assert.Equal(t, []int{0, 7}, Levels([]float64{10, 90}))

	levels := Levels([]float64{0, 25, 50, 75, 100})
	for _, l := range levels {
		assert.GreaterOrEqual(t, l, 0)
		assert.LessOrEqual(t, l, 7)
	}
}

func TestSparkline_LengthMatchesInput(t *testing.T) {
	scores := []float64{10, 35.2, 62, 48.9, 90, 12, 77}
	line := []rune(Sparkline(scores))

	assert.Len(t, line, len(scores))
	for _, r := range line {
		assert.Contains(t, sparklineRunes, string(r))
	}
}
