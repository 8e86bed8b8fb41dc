// Package metricid provides utilities for metric identification.
package metricid

import (
	"errors"
	"strings"
)

// ErrEmptyName is returned when a metric name normalizes to an empty ID.
var ErrEmptyName = errors.New("metric name is empty")

// Derive creates a metric ID from a display name. IDs are the lowercased
// name with spaces replaced by underscores and are immutable after creation.
func Derive(name string) (string, error) {
	id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if id == "" {
		return "", ErrEmptyName
	}

	return id, nil
}

// IsTableReference reports whether a dependency reference points at an
// external table (database.table syntax) rather than another metric.
func IsTableReference(ref string) bool {
	return strings.Contains(ref, ".")
}
