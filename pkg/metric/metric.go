// Package metric defines the core records for the semantic metrics catalog.
package metric

import (
	"time"
)

// OwnerUnassigned is the sentinel owner value for metrics without a
// responsible team or person. It carries governance meaning: unowned
// metrics score zero on the ownership factor.
const OwnerUnassigned = "Unassigned"

// Metric is a named, owned calculation over one or more data sources.
type Metric struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Calculation string    `json:"calculation"`
	Owner       string    `json:"owner"`
	Tags        []string  `json:"tags"`
	DataSource  string    `json:"data_source"`
	// Dependencies holds metric ids and external table references
	// (database.table) extracted from the calculation.
	Dependencies []string  `json:"dependencies"`
	TestCount    int       `json:"test_count"`
	UsageCount   int       `json:"usage_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasOwner reports whether the metric has a real owner assigned.
func (m *Metric) HasOwner() bool {
	return m.Owner != "" && m.Owner != OwnerUnassigned
}

// ChangeRecord is one field-level edit in a metric's history.
// Records are append-only and never mutated.
type ChangeRecord struct {
	MetricID  string    `json:"metric_id"`
	FieldName string    `json:"field_name"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// TrustScoreSnapshot is a persisted point-in-time trust score with its
// factor breakdown, kept for trend analysis.
type TrustScoreSnapshot struct {
	MetricID   string             `json:"metric_id"`
	Score      float64            `json:"score"`
	Breakdown  map[string]float64 `json:"breakdown"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// ValidationTest is a recorded validation check for a metric.
type ValidationTest struct {
	MetricID       string    `json:"metric_id"`
	TestType       string    `json:"test_type"`
	TestQuery      string    `json:"test_query"`
	ExpectedResult string    `json:"expected_result"`
	LastRun        time.Time `json:"last_run,omitzero"`
	Status         string    `json:"status"`
}

// UsageEvent records one consumption of a metric by a user or system.
type UsageEvent struct {
	MetricID string    `json:"metric_id"`
	UsedBy   string    `json:"used_by"`
	UsedAt   time.Time `json:"used_at"`
	Context  string    `json:"context"`
}

// UsageStats aggregates usage events over a window.
type UsageStats struct {
	TotalUses      int `json:"total_uses"`
	UniqueUsers    int `json:"unique_users"`
	UniqueContexts int `json:"unique_contexts"`
}
