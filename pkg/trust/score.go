// Package trust computes composite trust scores for semantic metrics.
// Scoring is pure and deterministic: a metric record plus its change
// history in, a structured result out. Rendering is the caller's job.
package trust

import (
	"math"
	"time"

	"github.com/semlayer/semgov/pkg/metric"
)

// Factor names used as breakdown keys.
const (
	FactorFreshness     = "freshness"
	FactorTests         = "tests"
	FactorUsage         = "usage"
	FactorDocumentation = "documentation"
	FactorOwnership     = "ownership"
)

// Raw factor maximums and target weights. Each factor is scored on its
// raw scale first, then rescaled linearly to its target weight.
const (
	freshnessRawMax = 20.0
	testsRawMax     = 25.0
	usageRawMax     = 20.0
	docsRawMax      = 20.0
	ownershipRawMax = 15.0

	freshnessWeight = 15.0
	testsWeight     = 35.0
	usageWeight     = 20.0
	docsWeight      = 15.0
	ownershipWeight = 15.0
)

// minDescriptionLen is the minimum description length considered meaningful.
const minDescriptionLen = 20

// Multipliers are the additive adjustments applied on top of the base
// score. TimeDecay is zero or negative.
type Multipliers struct {
	RecentActivity float64 `json:"recent_activity"`
	Consistency    float64 `json:"consistency"`
	TimeDecay      float64 `json:"time_decay"`
}

// Result is the full outcome of a trust score computation.
type Result struct {
	Score           float64            `json:"score"`
	Trend           Trend              `json:"trend"`
	Breakdown       map[string]float64 `json:"breakdown"`
	Multipliers     Multipliers        `json:"multipliers"`
	Banner          *Recommendation    `json:"banner,omitempty"`
	Recommendations []Recommendation   `json:"recommendations"`
}

// Scorer computes trust scores. The clock is injected so scoring stays
// deterministic under test.
type Scorer struct {
	now func() time.Time
}

// NewScorer creates a scorer using the wall clock.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerWithClock creates a scorer with a fixed clock.
func NewScorerWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score computes the composite trust score for a metric. history must be
// ordered most-recent-first, as returned by the repository.
func (s *Scorer) Score(m *metric.Metric, history []metric.ChangeRecord) Result {
	staleDays := s.daysSince(m.UpdatedAt)
	ageDays := s.daysSince(m.CreatedAt)

	freshness := rawFreshness(staleDays) * (freshnessWeight / freshnessRawMax)
	tests := rawTests(m.TestCount) * (testsWeight / testsRawMax)
	usage := rawUsage(m.UsageCount) * (usageWeight / usageRawMax)
	docs := rawDocumentation(m) * (docsWeight / docsRawMax)
	ownership := rawOwnership(m) * (ownershipWeight / ownershipRawMax)

	base := freshness + tests + usage + docs + ownership

	multipliers := Multipliers{
		RecentActivity: recentActivityBonus(staleDays),
		Consistency:    s.consistencyBonus(history),
		TimeDecay:      timeDecayPenalty(ageDays, staleDays),
	}

	final := base + multipliers.RecentActivity + multipliers.Consistency + multipliers.TimeDecay
	final = math.Max(0, math.Min(100, final))
	final = round1(final)

	result := Result{
		Score: final,
		Trend: s.Trend(history),
		Breakdown: map[string]float64{
			FactorFreshness:     round1(freshness),
			FactorTests:         round1(tests),
			FactorUsage:         round1(usage),
			FactorDocumentation: round1(docs),
			FactorOwnership:     round1(ownership),
		},
		Multipliers: multipliers,
	}

	result.Banner = banner(final)
	result.Recommendations = recommendations(m, staleDays)

	return result
}

// rawFreshness scores how recently the metric was updated (0-20).
func rawFreshness(staleDays int) float64 {
	switch {
	case staleDays <= 7:
		return 20
	case staleDays <= 30:
		return 15
	case staleDays <= 90:
		return 10
	case staleDays <= 180:
		return 5
	default:
		return 0
	}
}

// rawTests scores validation test coverage (0-25).
func rawTests(testCount int) float64 {
	switch {
	case testCount >= 5:
		return 25
	case testCount >= 3:
		return 20
	case testCount >= 1:
		return 15
	default:
		return 0
	}
}

// rawUsage scores adoption (0-20).
func rawUsage(usageCount int) float64 {
	switch {
	case usageCount >= 50:
		return 20
	case usageCount >= 20:
		return 15
	case usageCount >= 10:
		return 10
	case usageCount >= 1:
		return 5
	default:
		return 0
	}
}

// rawDocumentation scores documentation completeness (0-20), five points
// per documented facet.
func rawDocumentation(m *metric.Metric) float64 {
	score := 0.0
	if len(m.Description) > minDescriptionLen {
		score += 5
	}
	if m.DataSource != "" {
		score += 5
	}
	if len(m.Tags) > 0 {
		score += 5
	}
	if len(m.Dependencies) > 0 {
		score += 5
	}

	return score
}

// rawOwnership scores ownership assignment (0 or 15).
func rawOwnership(m *metric.Metric) float64 {
	if m.HasOwner() {
		return 15
	}

	return 0
}

// recentActivityBonus rewards metrics touched within the last month.
func recentActivityBonus(staleDays int) float64 {
	switch {
	case staleDays <= 7:
		return 10
	case staleDays <= 30:
		return 5
	default:
		return 0
	}
}

// consistencyBonus rewards metrics updated at least monthly. Requires at
// least five change records; only the ten most recent are examined.
func (s *Scorer) consistencyBonus(history []metric.ChangeRecord) float64 {
	if len(history) < 5 {
		return 0
	}

	recent := history
	if len(recent) > 10 {
		recent = recent[:10]
	}

	for i := 0; i < len(recent)-1; i++ {
		gap := daysBetween(recent[i+1].ChangedAt, recent[i].ChangedAt)
		if gap > 30 {
			return 0
		}
	}

	return 5
}

// timeDecayPenalty erodes trust for stale metrics. It engages only when
// the metric is both old (created >90 days ago) and stale (not updated
// for >30 days); a fresh metric with an old creation date is untouched.
func timeDecayPenalty(ageDays, staleDays int) float64 {
	if ageDays <= 90 || staleDays <= 30 {
		return 0
	}

	return -math.Min(25, float64(staleDays)/30*5)
}

func (s *Scorer) daysSince(t time.Time) int {
	return daysBetween(t, s.now())
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
