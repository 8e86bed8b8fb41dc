package store

// schemaStatements are applied in order on startup. All statements are
// idempotent so repeated starts against the same file are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS metrics (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		calculation TEXT NOT NULL,
		owner TEXT,
		data_source TEXT,
		tags TEXT,
		dependencies TEXT,
		test_count INTEGER DEFAULT 0,
		usage_count INTEGER DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		trust_score REAL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS metric_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metric_id TEXT NOT NULL,
		field_name TEXT NOT NULL,
		old_value TEXT,
		new_value TEXT,
		changed_by TEXT,
		changed_at TEXT NOT NULL,
		FOREIGN KEY (metric_id) REFERENCES metrics(id)
	)`,
	`CREATE TABLE IF NOT EXISTS validation_tests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metric_id TEXT NOT NULL,
		test_type TEXT NOT NULL,
		test_query TEXT,
		expected_result TEXT,
		last_run TEXT,
		status TEXT,
		FOREIGN KEY (metric_id) REFERENCES metrics(id)
	)`,
	`CREATE TABLE IF NOT EXISTS metric_usage (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metric_id TEXT NOT NULL,
		used_by TEXT,
		used_at TEXT NOT NULL,
		context TEXT,
		FOREIGN KEY (metric_id) REFERENCES metrics(id)
	)`,
	`CREATE TABLE IF NOT EXISTS trust_score_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		metric_id TEXT NOT NULL,
		score REAL NOT NULL,
		breakdown TEXT,
		recorded_at TEXT NOT NULL,
		FOREIGN KEY (metric_id) REFERENCES metrics(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_name ON metrics(name)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_owner ON metrics(owner)`,
	`CREATE INDEX IF NOT EXISTS idx_history_metric ON metric_history(metric_id)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_metric ON metric_usage(metric_id)`,
	`CREATE INDEX IF NOT EXISTS idx_trust_history_metric ON trust_score_history(metric_id, recorded_at DESC)`,
}
