package trust

import (
	"github.com/semlayer/semgov/pkg/metric"
)

// Severity grades a recommendation.
type Severity string

const (
	// SeverityCritical marks issues that should block production use.
	SeverityCritical Severity = "critical"
	// SeverityWarning marks issues worth addressing soon.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks advisory suggestions.
	SeverityInfo Severity = "info"
)

// Recommendation codes. The presentation layer maps codes to copy; the
// core never produces user-facing strings.
const (
	CodeProductionReady      = "production_ready"
	CodeActionRequired       = "action_required"
	CodeAddTests             = "add_tests"
	CodeExtendTests          = "extend_tests"
	CodePromoteAdoption      = "promote_adoption"
	CodeImproveDiscovery     = "improve_discoverability"
	CodeStaleReview          = "stale_review"
	CodeReviewSoon           = "review_soon"
	CodeImproveDocumentation = "improve_documentation"
	CodeAssignOwner          = "assign_owner"
)

// Documentation facets reported as missing.
const (
	MissingDataSource  = "data_source"
	MissingTags        = "tags"
	MissingDescription = "description"
)

// Recommendation is one actionable finding from a trust score computation.
type Recommendation struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	// Missing lists the documentation facets to add, for
	// CodeImproveDocumentation only.
	Missing []string `json:"missing,omitempty"`
}

// messages maps recommendation codes to their default copy.
var messages = map[string]string{
	CodeProductionReady:      "excellent trust score, production ready",
	CodeActionRequired:       "low trust score, needs attention before production use",
	CodeAddTests:             "add validation tests",
	CodeExtendTests:          "add more validation tests",
	CodePromoteAdoption:      "promote adoption, metric is unused",
	CodeImproveDiscovery:     "improve discoverability, usage is low",
	CodeStaleReview:          "review and refresh, metric is stale",
	CodeReviewSoon:           "schedule a review, metric is aging",
	CodeImproveDocumentation: "improve documentation",
	CodeAssignOwner:          "assign an owner",
}

func newRecommendation(severity Severity, code string) Recommendation {
	return Recommendation{Severity: severity, Code: code, Message: messages[code]}
}

// Score thresholds for the overall banner.
const (
	bannerExcellent = 80
	bannerPoor      = 50
)

// banner returns the overall assessment, or nil for mid-range scores.
func banner(score float64) *Recommendation {
	switch {
	case score >= bannerExcellent:
		rec := newRecommendation(SeverityInfo, CodeProductionReady)

		return &rec
	case score < bannerPoor:
		rec := newRecommendation(SeverityCritical, CodeActionRequired)

		return &rec
	default:
		return nil
	}
}

// recommendations generates threshold-based findings in priority order:
// tests, usage, freshness, documentation, ownership.
func recommendations(m *metric.Metric, staleDays int) []Recommendation {
	recs := []Recommendation{}

	if m.TestCount < 3 {
		if m.TestCount == 0 {
			recs = append(recs, newRecommendation(SeverityCritical, CodeAddTests))
		} else {
			recs = append(recs, newRecommendation(SeverityWarning, CodeExtendTests))
		}
	}

	if m.UsageCount < 10 {
		if m.UsageCount == 0 {
			recs = append(recs, newRecommendation(SeverityInfo, CodePromoteAdoption))
		} else {
			recs = append(recs, newRecommendation(SeverityInfo, CodeImproveDiscovery))
		}
	}

	switch {
	case staleDays > 90:
		recs = append(recs, newRecommendation(SeverityWarning, CodeStaleReview))
	case staleDays > 30:
		recs = append(recs, newRecommendation(SeverityInfo, CodeReviewSoon))
	}

	if missing := missingDocumentation(m); len(missing) > 0 {
		rec := newRecommendation(SeverityWarning, CodeImproveDocumentation)
		rec.Missing = missing
		recs = append(recs, rec)
	}

	if !m.HasOwner() {
		recs = append(recs, newRecommendation(SeverityWarning, CodeAssignOwner))
	}

	return recs
}

// missingDocumentation lists absent documentation facets, but only when
// documentation is weak enough to flag (two or fewer facets present).
func missingDocumentation(m *metric.Metric) []string {
	if rawDocumentation(m) > 10 {
		return nil
	}

	missing := []string{}
	if m.DataSource == "" {
		missing = append(missing, MissingDataSource)
	}
	if len(m.Tags) == 0 {
		missing = append(missing, MissingTags)
	}
	if len(m.Description) <= minDescriptionLen {
		missing = append(missing, MissingDescription)
	}

	return missing
}
