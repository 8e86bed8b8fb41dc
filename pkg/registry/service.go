// Package registry is the governance core: it owns the metric catalog,
// keeps the lineage graph in sync with stored definitions, and fronts
// scoring, validation, and comparison.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/semlayer/semgov/pkg/extract"
	"github.com/semlayer/semgov/pkg/lineage"
	"github.com/semlayer/semgov/pkg/metric"
	"github.com/semlayer/semgov/pkg/metric/metricid"
	"github.com/semlayer/semgov/pkg/observability"
	"github.com/semlayer/semgov/pkg/similarity"
	"github.com/semlayer/semgov/pkg/store"
	"github.com/semlayer/semgov/pkg/trust"
)

// Define static errors
var (
	ErrNameRequired        = errors.New("name is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrCalculationRequired = errors.New("calculation is required")
)

// changeHistoryLimit caps how much history is fed into the scorer.
const changeHistoryLimit = 50

// Service defines the metric registry operations
type Service interface {
	// Start loads the catalog and rebuilds the lineage graph
	Start(ctx context.Context) error
	// Stop shuts down the service
	Stop() error
	// Define creates a new metric from a definition
	Define(ctx context.Context, def *Definition) (*metric.Metric, error)
	// Update applies a partial update and records field-level changes
	Update(ctx context.Context, id string, req *UpdateRequest, changedBy string) (*metric.Metric, error)
	// Get retrieves a metric by id
	Get(ctx context.Context, id string) (*metric.Metric, error)
	// Search matches metrics by text query and/or tag
	Search(ctx context.Context, query, tag string) ([]*metric.Metric, error)
	// Suggest returns ids of cataloged metrics whose names resemble a
	// missed lookup, for "did you mean" hints
	Suggest(ctx context.Context, id string, limit int) ([]string, error)
	// Delete removes a metric and its lineage edges
	Delete(ctx context.Context, id string) error
	// RecordUsage records one consumption of a metric
	RecordUsage(ctx context.Context, id, usedBy, usageContext string) error
	// UsageStats aggregates usage over the last N days
	UsageStats(ctx context.Context, id string, days int) (*metric.UsageStats, error)
	// ChangeHistory returns recent change records, newest first
	ChangeHistory(ctx context.Context, id string, limit int) ([]metric.ChangeRecord, error)
	// Validate checks a metric definition and optionally records a test
	Validate(ctx context.Context, id, testDescription string) (*ValidationReport, error)
	// Score computes the trust score, optionally persisting a snapshot
	Score(ctx context.Context, id string, persist bool) (*trust.Result, error)
	// ScoreHistory returns persisted score snapshots, newest first
	ScoreHistory(ctx context.Context, id string, days int) ([]metric.TrustScoreSnapshot, error)
	// Compare produces a side-by-side comparison of two metrics
	Compare(ctx context.Context, firstID, secondID string) (*Comparison, error)
	// UpstreamTree returns the dependency tree rooted at a metric
	UpstreamTree(id string, depth int) *lineage.TreeNode
	// Downstream returns the metrics that depend on a metric
	Downstream(ctx context.Context, id string) ([]string, error)
	// DetectCycle reports whether a metric participates in a cycle
	DetectCycle(id string) bool
	// AuditLineage checks the whole graph for cycles
	AuditLineage() lineage.AuditResult
	// LineageInfo summarizes the graph by dependency level
	LineageInfo() *lineage.GraphInfo
	// LineageDOT renders the graph in Graphviz DOT format
	LineageDOT() string
}

type service struct {
	log       logrus.FieldLogger
	store     store.Store
	graph     *lineage.Graph
	extractor extract.Extractor
	scorer    *trust.Scorer
	comparer  *similarity.Comparer
	now       func() time.Time

	// serializes catalog mutations so graph and store stay in step
	mu sync.Mutex
}

var _ Service = (*service)(nil)

// NewService creates the registry service
func NewService(log logrus.FieldLogger, st store.Store) Service {
	return &service{
		log:       log.WithField("service", "registry"),
		store:     st,
		graph:     lineage.NewGraph(),
		extractor: extract.NewPatternExtractor(),
		scorer:    trust.NewScorer(),
		comparer:  similarity.NewComparer(),
		now:       time.Now,
	}
}

func (s *service) Start(ctx context.Context) error {
	metrics, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	for _, m := range metrics {
		s.graph.SetEdges(m.ID, m.Dependencies)
	}

	s.log.WithField("metrics", len(metrics)).Info("Rebuilt lineage graph from catalog")

	return nil
}

func (s *service) Stop() error {
	s.log.Info("Stopped registry")

	return nil
}

func (s *service) Define(ctx context.Context, def *Definition) (*metric.Metric, error) {
	if err := validateDefinition(def); err != nil {
		return nil, err
	}

	id, err := metricid.Derive(def.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metric id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner := def.Owner
	if owner == "" {
		owner = metric.OwnerUnassigned
	}

	now := s.now()
	m := &metric.Metric{
		ID:           id,
		Name:         def.Name,
		Description:  def.Description,
		Calculation:  def.Calculation,
		Owner:        owner,
		Tags:         def.Tags,
		DataSource:   def.DataSource,
		Dependencies: mergeRefs(s.extractor.ExtractReferences(def.Calculation), def.Dependencies),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Put(ctx, m); err != nil {
		return nil, err
	}

	s.graph.SetEdges(m.ID, m.Dependencies)

	observability.RecordCatalogOp("define")

	s.log.WithFields(logrus.Fields{
		"metric":       m.ID,
		"dependencies": len(m.Dependencies),
	}).Info("Defined metric")

	return m, nil
}

func (s *service) Update(ctx context.Context, id string, req *UpdateRequest, changedBy string) (*metric.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	changes := []metric.ChangeRecord{}

	record := func(field, oldValue, newValue string) {
		changes = append(changes, metric.ChangeRecord{
			MetricID:  id,
			FieldName: field,
			OldValue:  oldValue,
			NewValue:  newValue,
			ChangedBy: changedBy,
			ChangedAt: now,
		})
	}

	if req.Description != nil && *req.Description != m.Description {
		record("description", m.Description, *req.Description)
		m.Description = *req.Description
	}

	if req.Calculation != nil && *req.Calculation != m.Calculation {
		record("calculation", m.Calculation, *req.Calculation)
		m.Calculation = *req.Calculation
		m.Dependencies = s.extractor.ExtractReferences(m.Calculation)
	}

	if req.Owner != nil && *req.Owner != m.Owner {
		record("owner", m.Owner, *req.Owner)
		m.Owner = *req.Owner
	}

	if req.Tags != nil {
		record("tags", strings.Join(m.Tags, ","), strings.Join(req.Tags, ","))
		m.Tags = req.Tags
	}

	if req.DataSource != nil && *req.DataSource != m.DataSource {
		record("data_source", m.DataSource, *req.DataSource)
		m.DataSource = *req.DataSource
	}

	if req.Dependencies != nil {
		record("dependencies", strings.Join(m.Dependencies, ","), strings.Join(req.Dependencies, ","))
		m.Dependencies = req.Dependencies
	}

	if len(changes) == 0 {
		return m, nil
	}

	m.UpdatedAt = now

	if err := s.store.Update(ctx, m, changes); err != nil {
		return nil, err
	}

	s.graph.SetEdges(m.ID, m.Dependencies)

	observability.RecordCatalogOp("update")

	s.log.WithFields(logrus.Fields{
		"metric":  m.ID,
		"changes": len(changes),
	}).Info("Updated metric")

	return m, nil
}

func (s *service) Get(ctx context.Context, id string) (*metric.Metric, error) {
	return s.store.Get(ctx, id)
}

func (s *service) Search(ctx context.Context, query, tag string) ([]*metric.Metric, error) {
	var (
		metrics []*metric.Metric
		err     error
	)

	if query != "" {
		metrics, err = s.store.Search(ctx, query)
	} else {
		metrics, err = s.store.All(ctx)
	}

	if err != nil {
		return nil, err
	}

	if tag == "" {
		return metrics, nil
	}

	matched := []*metric.Metric{}

	for _, m := range metrics {
		for _, t := range m.Tags {
			if strings.EqualFold(t, tag) {
				matched = append(matched, m)

				break
			}
		}
	}

	return matched, nil
}

func (s *service) Suggest(ctx context.Context, id string, limit int) ([]string, error) {
	metrics, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	wanted := tokenSet(id)

	type candidate struct {
		id    string
		score float64
	}

	candidates := []candidate{}

	for _, m := range metrics {
		overlap := jaccard(wanted, tokenSet(m.ID))
		if overlap > 0 {
			candidates = append(candidates, candidate{id: m.ID, score: overlap})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}

		return candidates[i].id < candidates[j].id
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}

	return ids, nil
}

// tokenSet splits an id into its underscore-separated words.
func tokenSet(id string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, tok := range strings.Split(strings.ToLower(id), "_") {
		if tok != "" {
			set[tok] = struct{}{}
		}
	}

	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	shared := 0

	for tok := range a {
		if _, ok := b[tok]; ok {
			shared++
		}
	}

	union := len(a) + len(b) - shared

	return float64(shared) / float64(union)
}

func (s *service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.graph.Remove(id)

	observability.RecordCatalogOp("delete")

	s.log.WithField("metric", id).Info("Deleted metric")

	return nil
}

func (s *service) RecordUsage(ctx context.Context, id, usedBy, usageContext string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}

	if usageContext == "" {
		usageContext = "query"
	}

	return s.store.RecordUsage(ctx, &metric.UsageEvent{
		MetricID: id,
		UsedBy:   usedBy,
		UsedAt:   s.now(),
		Context:  usageContext,
	})
}

func (s *service) UsageStats(ctx context.Context, id string, days int) (*metric.UsageStats, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.store.UsageStats(ctx, id, days)
}

func (s *service) ChangeHistory(ctx context.Context, id string, limit int) ([]metric.ChangeRecord, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.store.ChangeHistory(ctx, id, limit)
}

func (s *service) Validate(ctx context.Context, id, testDescription string) (*ValidationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ChangeHistory(ctx, id, changeHistoryLimit)
	if err != nil {
		return nil, err
	}

	oldScore := s.scorer.Score(m, history).Score

	findings := s.check(ctx, m)
	for _, f := range findings {
		observability.RecordValidationFinding(f.Code, string(f.Severity))
	}

	report := &ValidationReport{
		MetricID:  id,
		Findings:  findings,
		TestCount: m.TestCount,
		OldScore:  oldScore,
		NewScore:  oldScore,
	}

	if testDescription == "" {
		return report, nil
	}

	if err := s.store.AddValidationTest(ctx, &metric.ValidationTest{
		MetricID:  id,
		TestType:  "manual",
		TestQuery: testDescription,
		Status:    "pending",
	}); err != nil {
		return nil, err
	}

	// Reload for the refreshed test count, then bump updated_at so the
	// freshness factor sees the validation.
	m, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m.UpdatedAt = s.now()

	if err := s.store.Update(ctx, m, nil); err != nil {
		return nil, err
	}

	report.TestAdded = true
	report.TestCount = m.TestCount
	report.NewScore = s.scorer.Score(m, history).Score

	return report, nil
}

// check runs the definition checks in a stable order.
func (s *service) check(ctx context.Context, m *metric.Metric) []Finding {
	findings := []Finding{}

	if !extract.LooksLikeSQL(m.Calculation) {
		findings = append(findings, Finding{Severity: FindingWarning, Code: FindingNonSQLCalculation})
	}

	for _, dep := range m.Dependencies {
		if metricid.IsTableReference(dep) {
			continue
		}

		if _, err := s.store.Get(ctx, dep); err != nil {
			findings = append(findings, Finding{Severity: FindingError, Code: FindingUnknownDependency, Ref: dep})
		}
	}

	if s.graph.DetectCycle(m.ID) {
		findings = append(findings, Finding{Severity: FindingError, Code: FindingCircularDependency})
	}

	if !m.HasOwner() {
		findings = append(findings, Finding{Severity: FindingWarning, Code: FindingUnassignedOwner})
	}

	if m.DataSource == "" {
		findings = append(findings, Finding{Severity: FindingWarning, Code: FindingMissingDataSource})
	}

	return findings
}

func (s *service) Score(ctx context.Context, id string, persist bool) (*trust.Result, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ChangeHistory(ctx, id, changeHistoryLimit)
	if err != nil {
		return nil, err
	}

	result := s.scorer.Score(m, history)
	observability.RecordScoreComputed(string(result.Trend), result.Score)

	if persist {
		if err := s.store.RecordScoreSnapshot(ctx, &metric.TrustScoreSnapshot{
			MetricID:   id,
			Score:      result.Score,
			Breakdown:  result.Breakdown,
			RecordedAt: s.now(),
		}); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

func (s *service) ScoreHistory(ctx context.Context, id string, days int) ([]metric.TrustScoreSnapshot, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	return s.store.ScoreHistory(ctx, id, days)
}

func (s *service) Compare(ctx context.Context, firstID, secondID string) (*Comparison, error) {
	first, err := s.store.Get(ctx, firstID)
	if err != nil {
		return nil, err
	}

	second, err := s.store.Get(ctx, secondID)
	if err != nil {
		return nil, err
	}

	firstHistory, err := s.store.ChangeHistory(ctx, firstID, changeHistoryLimit)
	if err != nil {
		return nil, err
	}

	secondHistory, err := s.store.ChangeHistory(ctx, secondID, changeHistoryLimit)
	if err != nil {
		return nil, err
	}

	firstScore := s.scorer.Score(first, firstHistory)
	secondScore := s.scorer.Score(second, secondHistory)
	sim := s.comparer.Compare(first, second)

	return &Comparison{
		First:           first,
		Second:          second,
		FirstScore:      firstScore,
		SecondScore:     secondScore,
		Similarity:      sim,
		LikelyDuplicate: sim >= similarity.LikelyDuplicateThreshold,
		Preference:      preference(first, second, firstScore.Score, secondScore.Score),
	}, nil
}

// preference picks a metric on a clear trust margin first, then on a
// clear usage margin.
func preference(first, second *metric.Metric, firstScore, secondScore float64) Preference {
	const trustMargin = 10

	switch {
	case firstScore > secondScore+trustMargin:
		return Preference{Choice: PreferFirst, Basis: PreferenceBasisTrust}
	case secondScore > firstScore+trustMargin:
		return Preference{Choice: PreferSecond, Basis: PreferenceBasisTrust}
	case first.UsageCount > second.UsageCount*2:
		return Preference{Choice: PreferFirst, Basis: PreferenceBasisUsage}
	case second.UsageCount > first.UsageCount*2:
		return Preference{Choice: PreferSecond, Basis: PreferenceBasisUsage}
	default:
		return Preference{Choice: PreferNeither}
	}
}

func (s *service) UpstreamTree(id string, depth int) *lineage.TreeNode {
	return s.graph.UpstreamTree(id, depth)
}

func (s *service) Downstream(ctx context.Context, id string) ([]string, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Older definitions referenced dependencies by display name, so the
	// downstream query matches on both.
	return s.graph.Downstream(id, m.Name), nil
}

func (s *service) DetectCycle(id string) bool {
	return s.graph.DetectCycle(id)
}

func (s *service) AuditLineage() lineage.AuditResult {
	return s.graph.Audit()
}

func (s *service) LineageInfo() *lineage.GraphInfo {
	return s.graph.Info()
}

func (s *service) LineageDOT() string {
	return s.graph.DOT()
}

// mergeRefs unions two reference lists, deduplicated and sorted.
func mergeRefs(extracted, explicit []string) []string {
	if len(explicit) == 0 {
		return extracted
	}

	seen := make(map[string]struct{}, len(extracted)+len(explicit))
	merged := make([]string, 0, len(extracted)+len(explicit))

	for _, ref := range append(append([]string{}, extracted...), explicit...) {
		if _, ok := seen[ref]; ok {
			continue
		}

		seen[ref] = struct{}{}

		merged = append(merged, ref)
	}

	sort.Strings(merged)

	return merged
}

func validateDefinition(def *Definition) error {
	switch {
	case def.Name == "":
		return ErrNameRequired
	case def.Description == "":
		return ErrDescriptionRequired
	case def.Calculation == "":
		return ErrCalculationRequired
	default:
		return nil
	}
}
