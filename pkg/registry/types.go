package registry

import (
	"github.com/semlayer/semgov/pkg/metric"
	"github.com/semlayer/semgov/pkg/trust"
)

// Definition is the input for creating a new metric.
type Definition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Calculation string   `json:"calculation"`
	Owner       string   `json:"owner"`
	Tags        []string `json:"tags"`
	DataSource  string   `json:"data_source"`
	// Dependencies lists explicit upstream references (metric ids or
	// database.table), merged with the set extracted from the
	// calculation.
	Dependencies []string `json:"dependencies,omitempty"`
}

// UpdateRequest carries a partial metric update. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Description *string  `json:"description,omitempty"`
	Calculation *string  `json:"calculation,omitempty"`
	Owner       *string  `json:"owner,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DataSource  *string  `json:"data_source,omitempty"`
	// Dependencies replaces the stored dependency set when non-nil.
	// Changing the calculation instead re-extracts it.
	Dependencies []string `json:"dependencies,omitempty"`
}

// FindingSeverity grades a validation finding.
type FindingSeverity string

const (
	// FindingError blocks a clean validation.
	FindingError FindingSeverity = "error"
	// FindingWarning is advisory.
	FindingWarning FindingSeverity = "warning"
)

// Validation finding codes.
const (
	FindingUnknownDependency  = "unknown_dependency"
	FindingCircularDependency = "circular_dependency"
	FindingNonSQLCalculation  = "non_sql_calculation"
	FindingUnassignedOwner    = "unassigned_owner"
	FindingMissingDataSource  = "missing_data_source"
)

// Finding is one validation check result.
type Finding struct {
	Severity FindingSeverity `json:"severity"`
	Code     string          `json:"code"`
	// Ref names the offending reference, for dependency findings.
	Ref string `json:"ref,omitempty"`
}

// ValidationReport is the outcome of validating a metric, with the
// trust score before and after any test was recorded.
type ValidationReport struct {
	MetricID  string    `json:"metric_id"`
	Findings  []Finding `json:"findings"`
	TestAdded bool      `json:"test_added"`
	TestCount int       `json:"test_count"`
	OldScore  float64   `json:"old_score"`
	NewScore  float64   `json:"new_score"`
}

// PreferenceChoice says which of two compared metrics to prefer.
type PreferenceChoice string

const (
	// PreferFirst recommends the first metric.
	PreferFirst PreferenceChoice = "first"
	// PreferSecond recommends the second metric.
	PreferSecond PreferenceChoice = "second"
	// PreferNeither means the comparison is inconclusive.
	PreferNeither PreferenceChoice = "neither"
)

// Preference bases.
const (
	PreferenceBasisTrust = "trust"
	PreferenceBasisUsage = "usage"
)

// Preference is a comparison recommendation with the signal it rests on.
type Preference struct {
	Choice PreferenceChoice `json:"choice"`
	Basis  string           `json:"basis,omitempty"`
}

// Comparison is a side-by-side view of two metrics.
type Comparison struct {
	First           *metric.Metric `json:"first"`
	Second          *metric.Metric `json:"second"`
	FirstScore      trust.Result   `json:"first_score"`
	SecondScore     trust.Result   `json:"second_score"`
	Similarity      float64        `json:"similarity"`
	LikelyDuplicate bool           `json:"likely_duplicate"`
	Preference      Preference     `json:"preference"`
}
