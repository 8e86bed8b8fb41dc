// Package store persists the metric catalog in SQLite: metric records,
// their change history, validation tests, usage events, and trust score
// snapshots.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/semlayer/semgov/pkg/metric"
	"github.com/semlayer/semgov/pkg/observability"
)

// Define static errors
var (
	ErrNotFound      = errors.New("metric not found")
	ErrAlreadyExists = errors.New("metric already exists")
)

// Store defines the persistence operations for the metric catalog
type Store interface {
	// Start opens the database and applies the schema
	Start(ctx context.Context) error
	// Stop closes the database
	Stop() error
	// Put inserts a new metric, failing if the id is taken
	Put(ctx context.Context, m *metric.Metric) error
	// Get retrieves a metric by id
	Get(ctx context.Context, id string) (*metric.Metric, error)
	// Update rewrites a metric and appends its change records atomically
	Update(ctx context.Context, m *metric.Metric, changes []metric.ChangeRecord) error
	// Delete removes a metric and all its related rows
	Delete(ctx context.Context, id string) error
	// All returns every metric in the catalog
	All(ctx context.Context) ([]*metric.Metric, error)
	// Search matches metrics by name or description substring
	Search(ctx context.Context, query string) ([]*metric.Metric, error)
	// ByOwner returns the metrics assigned to an owner
	ByOwner(ctx context.Context, owner string) ([]*metric.Metric, error)
	// ByTag returns the metrics carrying a tag
	ByTag(ctx context.Context, tag string) ([]*metric.Metric, error)
	// ChangeHistory returns the most recent change records for a metric
	ChangeHistory(ctx context.Context, id string, limit int) ([]metric.ChangeRecord, error)
	// AddValidationTest records a test and refreshes the metric's test count
	AddValidationTest(ctx context.Context, t *metric.ValidationTest) error
	// RecordUsage records a usage event and refreshes the usage count
	RecordUsage(ctx context.Context, e *metric.UsageEvent) error
	// UsageStats aggregates usage events over the last N days
	UsageStats(ctx context.Context, id string, days int) (*metric.UsageStats, error)
	// RecordScoreSnapshot persists a trust score for trend analysis
	RecordScoreSnapshot(ctx context.Context, s *metric.TrustScoreSnapshot) error
	// ScoreHistory returns score snapshots from the last N days, newest first
	ScoreHistory(ctx context.Context, id string, days int) ([]metric.TrustScoreSnapshot, error)
}

type sqliteStore struct {
	log logrus.FieldLogger
	cfg *Config
	db  *sql.DB
}

var _ Store = (*sqliteStore)(nil)

// NewStore creates a SQLite-backed store
func NewStore(log logrus.FieldLogger, cfg *Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &sqliteStore{
		log: log.WithField("service", "store"),
		cfg: cfg,
	}, nil
}

func (s *sqliteStore) Start(ctx context.Context) error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", s.cfg.Path, s.cfg.BusyTimeout)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite handles one writer at a time; a single connection avoids
	// lock contention and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	s.db = db

	s.log.WithField("path", s.cfg.Path).Info("Opened metric store")

	return nil
}

func (s *sqliteStore) Stop() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	s.log.Info("Closed metric store")

	return nil
}

const metricColumns = `id, name, description, calculation, owner, data_source,
	tags, dependencies, test_count, usage_count, created_at, updated_at`

// recordQuery reports the outcome of a store operation
func recordQuery(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	observability.RecordStoreQuery(operation, status)
}

func (s *sqliteStore) Put(ctx context.Context, m *metric.Metric) (err error) {
	defer func() { recordQuery("put", err) }()
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM metrics WHERE id = ?`, m.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check metric %s: %w", m.ID, err)
	}

	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
	}

	tags, deps, err := encodeLists(m)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO metrics (`+metricColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Description, m.Calculation, m.Owner, m.DataSource,
		tags, deps, m.TestCount, m.UsageCount,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert metric %s: %w", m.ID, err)
	}

	return nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (m *metric.Metric, err error) {
	defer func() { recordQuery("get", err) }()

	row := s.db.QueryRowContext(ctx, `SELECT `+metricColumns+` FROM metrics WHERE id = ?`, id)

	m, err = scanMetric(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get metric %s: %w", id, err)
	}

	return m, nil
}

func (s *sqliteStore) Update(ctx context.Context, m *metric.Metric, changes []metric.ChangeRecord) (err error) {
	defer func() { recordQuery("update", err) }()

	tags, deps, err := encodeLists(m)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `UPDATE metrics SET
		name = ?, description = ?, calculation = ?, owner = ?, data_source = ?,
		tags = ?, dependencies = ?, test_count = ?, usage_count = ?, updated_at = ?
		WHERE id = ?`,
		m.Name, m.Description, m.Calculation, m.Owner, m.DataSource,
		tags, deps, m.TestCount, m.UsageCount, formatTime(m.UpdatedAt), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update metric %s: %w", m.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update metric %s: %w", m.ID, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, m.ID)
	}

	for _, c := range changes {
		_, err := tx.ExecContext(ctx, `INSERT INTO metric_history
			(metric_id, field_name, old_value, new_value, changed_by, changed_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, c.FieldName, c.OldValue, c.NewValue, c.ChangedBy, formatTime(c.ChangedAt))
		if err != nil {
			return fmt.Errorf("failed to record change for %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update for %s: %w", m.ID, err)
	}

	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) (err error) {
	defer func() { recordQuery("delete", err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, table := range []string{"validation_tests", "metric_usage", "metric_history", "trust_score_history"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE metric_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete %s rows for %s: %w", table, id, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM metrics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete metric %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete metric %s: %w", id, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete for %s: %w", id, err)
	}

	return nil
}

func (s *sqliteStore) All(ctx context.Context) (metrics []*metric.Metric, err error) {
	defer func() { recordQuery("all", err) }()

	return s.queryMetrics(ctx, `SELECT `+metricColumns+` FROM metrics ORDER BY id`)
}

func (s *sqliteStore) Search(ctx context.Context, query string) (metrics []*metric.Metric, err error) {
	defer func() { recordQuery("search", err) }()

	pattern := "%" + query + "%"

	return s.queryMetrics(ctx, `SELECT `+metricColumns+` FROM metrics
		WHERE name LIKE ? OR description LIKE ?
		ORDER BY usage_count DESC, trust_score DESC`, pattern, pattern)
}

func (s *sqliteStore) ByOwner(ctx context.Context, owner string) ([]*metric.Metric, error) {
	return s.queryMetrics(ctx, `SELECT `+metricColumns+` FROM metrics WHERE owner = ? ORDER BY id`, owner)
}

func (s *sqliteStore) ByTag(ctx context.Context, tag string) ([]*metric.Metric, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	// Tags are stored as a JSON array, so filtering happens here rather
	// than in SQL.
	matched := []*metric.Metric{}

	for _, m := range all {
		for _, t := range m.Tags {
			if t == tag {
				matched = append(matched, m)

				break
			}
		}
	}

	return matched, nil
}

func (s *sqliteStore) ChangeHistory(ctx context.Context, id string, limit int) ([]metric.ChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT metric_id, field_name, old_value, new_value, changed_by, changed_at
		FROM metric_history
		WHERE metric_id = ?
		ORDER BY changed_at DESC
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", id, err)
	}

	defer rows.Close()

	records := []metric.ChangeRecord{}

	for rows.Next() {
		var (
			r         metric.ChangeRecord
			changedAt string
		)

		if err := rows.Scan(&r.MetricID, &r.FieldName, &r.OldValue, &r.NewValue, &r.ChangedBy, &changedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if r.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, err
		}

		records = append(records, r)
	}

	return records, rows.Err()
}

func (s *sqliteStore) AddValidationTest(ctx context.Context, t *metric.ValidationTest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `INSERT INTO validation_tests
		(metric_id, test_type, test_query, expected_result, status)
		VALUES (?, ?, ?, ?, ?)`,
		t.MetricID, t.TestType, t.TestQuery, t.ExpectedResult, t.Status)
	if err != nil {
		return fmt.Errorf("failed to insert validation test for %s: %w", t.MetricID, err)
	}

	// Derived count, recomputed rather than incremented
	_, err = tx.ExecContext(ctx, `UPDATE metrics
		SET test_count = (SELECT COUNT(*) FROM validation_tests WHERE metric_id = ?)
		WHERE id = ?`, t.MetricID, t.MetricID)
	if err != nil {
		return fmt.Errorf("failed to refresh test count for %s: %w", t.MetricID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit validation test for %s: %w", t.MetricID, err)
	}

	return nil
}

func (s *sqliteStore) RecordUsage(ctx context.Context, e *metric.UsageEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `INSERT INTO metric_usage (metric_id, used_by, used_at, context)
		VALUES (?, ?, ?, ?)`,
		e.MetricID, e.UsedBy, formatTime(e.UsedAt), e.Context)
	if err != nil {
		return fmt.Errorf("failed to insert usage for %s: %w", e.MetricID, err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE metrics
		SET usage_count = (SELECT COUNT(*) FROM metric_usage WHERE metric_id = ?)
		WHERE id = ?`, e.MetricID, e.MetricID)
	if err != nil {
		return fmt.Errorf("failed to refresh usage count for %s: %w", e.MetricID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage for %s: %w", e.MetricID, err)
	}

	return nil
}

func (s *sqliteStore) UsageStats(ctx context.Context, id string, days int) (*metric.UsageStats, error) {
	from := formatTime(time.Now().AddDate(0, 0, -days))

	stats := &metric.UsageStats{}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COUNT(DISTINCT used_by),
		COUNT(DISTINCT context)
		FROM metric_usage
		WHERE metric_id = ? AND used_at >= ?`, id, from).
		Scan(&stats.TotalUses, &stats.UniqueUsers, &stats.UniqueContexts)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage stats for %s: %w", id, err)
	}

	return stats, nil
}

func (s *sqliteStore) RecordScoreSnapshot(ctx context.Context, snap *metric.TrustScoreSnapshot) error {
	breakdown, err := json.Marshal(snap.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown for %s: %w", snap.MetricID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `INSERT INTO trust_score_history (metric_id, score, breakdown, recorded_at)
		VALUES (?, ?, ?, ?)`,
		snap.MetricID, snap.Score, string(breakdown), formatTime(snap.RecordedAt))
	if err != nil {
		return fmt.Errorf("failed to insert score snapshot for %s: %w", snap.MetricID, err)
	}

	// Denormalized onto the metric row for search ordering
	_, err = tx.ExecContext(ctx, `UPDATE metrics SET trust_score = ? WHERE id = ?`, snap.Score, snap.MetricID)
	if err != nil {
		return fmt.Errorf("failed to update trust score for %s: %w", snap.MetricID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit score snapshot for %s: %w", snap.MetricID, err)
	}

	return nil
}

func (s *sqliteStore) ScoreHistory(ctx context.Context, id string, days int) ([]metric.TrustScoreSnapshot, error) {
	from := formatTime(time.Now().AddDate(0, 0, -days))

	rows, err := s.db.QueryContext(ctx, `SELECT metric_id, score, breakdown, recorded_at
		FROM trust_score_history
		WHERE metric_id = ? AND recorded_at >= ?
		ORDER BY recorded_at DESC`, id, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history for %s: %w", id, err)
	}

	defer rows.Close()

	snapshots := []metric.TrustScoreSnapshot{}

	for rows.Next() {
		var (
			snap       metric.TrustScoreSnapshot
			breakdown  sql.NullString
			recordedAt string
		)

		if err := rows.Scan(&snap.MetricID, &snap.Score, &breakdown, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score history row: %w", err)
		}

		if breakdown.Valid && breakdown.String != "" {
			if err := json.Unmarshal([]byte(breakdown.String), &snap.Breakdown); err != nil {
				return nil, fmt.Errorf("failed to decode breakdown for %s: %w", id, err)
			}
		}

		if snap.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, err
		}

		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

func (s *sqliteStore) queryMetrics(ctx context.Context, query string, args ...any) ([]*metric.Metric, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}

	defer rows.Close()

	metrics := []*metric.Metric{}

	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}

		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanMetric(row scanner) (*metric.Metric, error) {
	var (
		m                    metric.Metric
		tags, deps           sql.NullString
		createdAt, updatedAt string
	)

	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Calculation, &m.Owner, &m.DataSource,
		&tags, &deps, &m.TestCount, &m.UsageCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	m.Tags = decodeList(tags)
	m.Dependencies = decodeList(deps)

	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &m, nil
}

func encodeLists(m *metric.Metric) (tags, deps string, err error) {
	tagsJSON, err := json.Marshal(orEmpty(m.Tags))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tags for %s: %w", m.ID, err)
	}

	depsJSON, err := json.Marshal(orEmpty(m.Dependencies))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode dependencies for %s: %w", m.ID, err)
	}

	return string(tagsJSON), string(depsJSON), nil
}

func decodeList(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return []string{}
	}

	out := []string{}
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return []string{}
	}

	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

// timeLayout is RFC3339 with fixed-width fractional seconds, so stored
// timestamps sort correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}

	return t, nil
}
