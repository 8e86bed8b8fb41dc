// Package similarity scores how alike two metric definitions are, for
// duplicate detection across the registry.
package similarity

import (
	"strings"

	"github.com/semlayer/semgov/pkg/metric"
)

// Component weights. Descriptions carry the most signal; tags and a
// shared data source split the rest.
const (
	descriptionWeight = 0.4
	tagWeight         = 0.3
	sourceWeight      = 0.3
)

// LikelyDuplicateThreshold is the score at or above which two metrics
// are reported as likely duplicates.
const LikelyDuplicateThreshold = 0.7

// Comparer scores metric pairs.
type Comparer struct{}

// NewComparer creates a Comparer.
func NewComparer() *Comparer {
	return &Comparer{}
}

// Compare returns a similarity score in [0, 1] combining description
// word overlap, tag overlap, and data-source equality.
func (c *Comparer) Compare(a, b *metric.Metric) float64 {
	score := descriptionWeight * jaccard(words(a.Description), words(b.Description))
	score += tagWeight * jaccard(lowered(a.Tags), lowered(b.Tags))

	if a.DataSource != "" && strings.EqualFold(a.DataSource, b.DataSource) {
		score += sourceWeight
	}

	return score
}

// LikelyDuplicate reports whether the pair scores at or above the
// duplicate threshold.
func (c *Comparer) LikelyDuplicate(a, b *metric.Metric) bool {
	return c.Compare(a, b) >= LikelyDuplicateThreshold
}

// jaccard computes |A∩B| / |A∪B|. Two empty sets score zero.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

func words(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

func lowered(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = strings.ToLower(t)
	}

	return out
}
