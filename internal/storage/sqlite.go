package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alvmarrod/redfish-verify/internal/validate"
)

// Storage archives verification runs and their per-resource results
type Storage struct {
	db *sql.DB
}

// NewStorage opens (creating if needed) the archive database and
// initializes its schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		host TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		total_pass INTEGER DEFAULT 0,
		total_fail INTEGER DEFAULT 0,
		total_warn INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS results (
		result_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		identifier TEXT,
		declared_type TEXT,
		verdict TEXT NOT NULL,
		detail TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun archives one run with its records, in visit order, in a single
// transaction
func (s *Storage) SaveRun(run Run, records []validate.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, host, started_at, finished_at, total_pass, total_fail, total_warn)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Host, run.StartedAt, run.FinishedAt, run.Passed, run.Failed, run.Warned)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (run_id, position, identifier, declared_type, verdict, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(run.RunID, i, rec.Identifier, rec.DeclaredType, string(rec.Verdict), rec.Detail); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRun retrieves an archived run by id, returns nil if not found
func (s *Storage) GetRun(runID string) (*Run, error) {
	var run Run
	err := s.db.QueryRow(`
		SELECT run_id, host, started_at, finished_at, total_pass, total_fail, total_warn
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&run.RunID, &run.Host, &run.StartedAt, &run.FinishedAt, &run.Passed, &run.Failed, &run.Warned)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// GetResults returns a run's archived records in visit order
func (s *Storage) GetResults(runID string) ([]validate.Record, error) {
	rows, err := s.db.Query(`
		SELECT identifier, declared_type, verdict, detail
		FROM results
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	defer rows.Close()

	var records []validate.Record
	for rows.Next() {
		var rec validate.Record
		var verdict string
		if err := rows.Scan(&rec.Identifier, &rec.DeclaredType, &verdict, &rec.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		rec.Verdict = validate.Verdict(verdict)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
