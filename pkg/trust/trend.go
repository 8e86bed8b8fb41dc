package trust

import (
	"strings"

	"github.com/semlayer/semgov/pkg/metric"
)

// Trend classifies the direction of a metric's recent change activity.
type Trend string

const (
	// TrendImproving means noticeably more changes in the last 30 days
	// than in the 30-60 day window.
	TrendImproving Trend = "improving"
	// TrendStable is the default when activity is flat or history is thin.
	TrendStable Trend = "stable"
	// TrendDegrading means activity has dropped off.
	TrendDegrading Trend = "degrading"
)

// trendHysteresis is the change-count margin required before a trend is
// declared non-stable.
const trendHysteresis = 2

// Trend classifies change activity over the last two 30-day windows.
// Fewer than two records yields TrendStable.
func (s *Scorer) Trend(history []metric.ChangeRecord) Trend {
	if len(history) < 2 {
		return TrendStable
	}

	recent, older := 0, 0
	for _, h := range history {
		days := s.daysSince(h.ChangedAt)
		switch {
		case days <= 30:
			recent++
		case days <= 60:
			older++
		}
	}

	switch {
	case recent > older+trendHysteresis:
		return TrendImproving
	case recent < older-trendHysteresis:
		return TrendDegrading
	default:
		return TrendStable
	}
}

// Sparkline glyphs, lowest to highest intensity.
const (
	sparklineRunes = "▁▂▃▄▅▆▇█"
	sparklineFlat  = "─"
)

// sparklineMidLevel is the level assigned to every element of a flat
// series.
const sparklineMidLevel = 3

// Levels normalizes a score series onto eight intensity levels (0-7)
// using min-max scaling. A flat series maps every element to the mid
// level; an empty series yields an empty slice.
func Levels(scores []float64) []int {
	if len(scores) == 0 {
		return []int{}
	}

	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}

		if s > maxScore {
			maxScore = s
		}
	}

	levels := make([]int, len(scores))

	if maxScore == minScore {
		for i := range levels {
			levels[i] = sparklineMidLevel
		}

		return levels
	}

	for i, s := range scores {
		normalized := (s - minScore) / (maxScore - minScore)

		idx := int(normalized * 8)
		if idx > 7 {
			idx = 7
		}

		levels[i] = idx
	}

	return levels
}

// Sparkline renders a score series as an 8-level glyph sequence of the
// same length as the input. A flat series maps every element to the mid
// glyph; an empty series renders as a single flat-line glyph.
func Sparkline(scores []float64) string {
	if len(scores) == 0 {
		return sparklineFlat
	}

	glyphs := []rune(sparklineRunes)

	var sb strings.Builder
	for _, level := range Levels(scores) {
		sb.WriteRune(glyphs[level])
	}

	return sb.String()
}
