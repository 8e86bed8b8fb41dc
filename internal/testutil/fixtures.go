package testutil

import (
	"time"

	"github.com/semlayer/semgov/pkg/metric"
)

// MetricOption is a functional option for customizing metric fixtures.
type MetricOption func(*metric.Metric)

// WithOwner sets the owner of the fixture.
func WithOwner(owner string) MetricOption {
	return func(m *metric.Metric) {
		m.Owner = owner
	}
}

// WithTags sets the tags of the fixture.
func WithTags(tags ...string) MetricOption {
	return func(m *metric.Metric) {
		m.Tags = tags
	}
}

// WithDataSource sets the data source of the fixture.
func WithDataSource(source string) MetricOption {
	return func(m *metric.Metric) {
		m.DataSource = source
	}
}

// WithDependencies sets the dependencies of the fixture.
func WithDependencies(deps ...string) MetricOption {
	return func(m *metric.Metric) {
		m.Dependencies = deps
	}
}

// WithTestCount sets the validation test count of the fixture.
func WithTestCount(count int) MetricOption {
	return func(m *metric.Metric) {
		m.TestCount = count
	}
}

// WithUsageCount sets the usage count of the fixture.
func WithUsageCount(count int) MetricOption {
	return func(m *metric.Metric) {
		m.UsageCount = count
	}
}

// WithAge places the fixture's created and updated timestamps the
// given number of days in the past.
func WithAge(days int) MetricOption {
	return func(m *metric.Metric) {
		at := time.Now().AddDate(0, 0, -days)
		m.CreatedAt = at
		m.UpdatedAt = at
	}
}

// NewMetric builds a complete metric fixture. Defaults describe a
// fresh, owned revenue metric; options override individual fields.
func NewMetric(id string, opts ...MetricOption) *metric.Metric {
	now := time.Now()

	m := &metric.Metric{
		ID:           id,
		Name:         "Fixture " + id,
		Description:  "fixture metric for " + id + " used across package tests",
		Calculation:  "SELECT SUM(amount) FROM billing.invoices",
		Owner:        "@data-team",
		Tags:         []string{"fixture"},
		DataSource:   "billing.invoices",
		Dependencies: []string{"billing.invoices"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}
