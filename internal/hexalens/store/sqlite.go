package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pmaojo/hexalens/internal/hexalens/analysis"
	"github.com/pmaojo/hexalens/internal/hexalens/domain"
)

// Store persists run history using SQLite. The engine itself stays
// stateless; the store is a write-mostly reporting surface.
type Store struct {
	db *sql.DB
}

// RunSummary is one persisted run, newest first in listings.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	Types      int       `json:"types"`
	Violations int       `json:"violations"`
	Cycles     int       `json:"cycles"`
	Health     int       `json:"health"`
	Grade      string    `json:"grade"`
}

// NewStore opens (creating if needed) 'hexalens.db' in the storage
// directory and initializes the schema.
func NewStore(storageDir string) (*Store, error) {
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	dbPath := filepath.Join(storageDir, "hexalens.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at TEXT,
			types INTEGER,
			violations INTEGER,
			cycles INTEGER,
			health INTEGER,
			grade TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS classifications (
			run_id TEXT,
			subject TEXT,
			target TEXT,
			kind TEXT,
			direction TEXT,
			status TEXT,
			confidence INTEGER,
			criterion TEXT,
			justification TEXT,
			PRIMARY KEY (run_id, subject)
		);`,
		`CREATE TABLE IF NOT EXISTS violations (
			run_id TEXT,
			constraint_name TEXT,
			severity TEXT,
			message TEXT,
			types TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_classifications_run ON classifications(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_violations_run ON violations(run_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec schema query: %w", err)
		}
	}
	return nil
}

// SaveReport persists one run with its classifications and violations in
// a single transaction.
func (s *Store) SaveReport(report *analysis.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, started_at, types, violations, cycles, health, grade)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			started_at=excluded.started_at,
			types=excluded.types,
			violations=excluded.violations,
			cycles=excluded.cycles,
			health=excluded.health,
			grade=excluded.grade;
	`, report.RunID, report.StartedAt.Format(time.RFC3339Nano), len(report.Results),
		len(report.Violations), len(report.Cycles), report.Health.Overall, report.Health.Grade)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for _, res := range report.Results {
		_, err = tx.Exec(`
			INSERT INTO classifications (run_id, subject, target, kind, direction, status, confidence, criterion, justification)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, subject) DO UPDATE SET
				target=excluded.target,
				kind=excluded.kind,
				direction=excluded.direction,
				status=excluded.status,
				confidence=excluded.confidence,
				criterion=excluded.criterion,
				justification=excluded.justification;
		`, report.RunID, string(res.Subject), string(res.Target), res.Kind,
			string(res.Direction), string(res.Status), int(res.Confidence),
			res.Criterion, res.Justification)
		if err != nil {
			return fmt.Errorf("failed to save classification: %w", err)
		}
	}

	for _, v := range report.Violations {
		types, _ := json.Marshal(v.Types)
		_, err = tx.Exec(`
			INSERT INTO violations (run_id, constraint_name, severity, message, types)
			VALUES (?, ?, ?, ?, ?)
		`, report.RunID, v.Constraint, string(v.Severity), v.Message, string(types))
		if err != nil {
			return fmt.Errorf("failed to save violation: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns up to limit persisted runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(`
		SELECT run_id, started_at, types, violations, cycles, health, grade
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started string
		if err := rows.Scan(&r.RunID, &started, &r.Types, &r.Violations, &r.Cycles, &r.Health, &r.Grade); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PreviousHealth returns the health score of the most recent run before
// the given one, or false when there is no earlier run.
func (s *Store) PreviousHealth(runID string) (int, bool, error) {
	row := s.db.QueryRow(`
		SELECT r.health FROM runs r
		WHERE r.run_id != ?
		  AND r.started_at < (SELECT started_at FROM runs WHERE run_id = ?)
		ORDER BY r.started_at DESC LIMIT 1
	`, runID, runID)
	var health int
	switch err := row.Scan(&health); err {
	case nil:
		return health, true, nil
	case sql.ErrNoRows:
		return 0, false, nil
	default:
		return 0, false, err
	}
}

// Violations loads the persisted violations of one run.
func (s *Store) Violations(runID string) ([]domain.Violation, error) {
	rows, err := s.db.Query(`
		SELECT constraint_name, severity, message, types
		FROM violations WHERE run_id = ?
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Violation
	for rows.Next() {
		var v domain.Violation
		var severity, types string
		if err := rows.Scan(&v.Constraint, &severity, &v.Message, &types); err != nil {
			return nil, err
		}
		v.Severity = domain.Severity(severity)
		if types != "" {
			json.Unmarshal([]byte(types), &v.Types)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
