package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DBFile is the name of the history database inside the data directory
const DBFile = "hfind.db"

// Run statuses
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Manager persists the history of find invocations
type Manager struct {
	db *sql.DB
}

// RunRecord represents a single invocation
type RunRecord struct {
	ID           string // UUID, assigned by SaveRun when empty
	Root         string
	Query        string // flags as given, for display
	StartTime    time.Time
	EndTime      time.Time
	Status       string
	Visited      int
	Matched      int
	BytesMatched int64
	Error        string
}

// Duration returns how long the run took
func (r RunRecord) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// NewManager opens (and creates if needed) the history database in dataDir
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// concurrent hfind processes may append at the same time
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		query TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		visited INTEGER DEFAULT 0,
		matched INTEGER DEFAULT 0,
		bytes_matched INTEGER DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_root_time ON runs(root, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_time ON runs(start_time DESC);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SaveRun records an invocation and returns its ID
func (m *Manager) SaveRun(record RunRecord) (string, error) {
	switch record.Status {
	case StatusSuccess, StatusFailed, StatusCancelled:
	default:
		return "", fmt.Errorf("invalid status: %s (must be %q, %q or %q)",
			record.Status, StatusSuccess, StatusFailed, StatusCancelled)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	} else if _, err := uuid.Parse(record.ID); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", record.ID, err)
	}

	query := `
		INSERT INTO runs (id, root, query, start_time, end_time, status, visited, matched, bytes_matched, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.ID,
		record.Root,
		record.Query,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.Visited,
		record.Matched,
		record.BytesMatched,
		record.Error,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save run record: %w", err)
	}

	return record.ID, nil
}

const selectRuns = `
	SELECT id, root, query, start_time, end_time, status, visited, matched, bytes_matched, error
	FROM runs
`

// GetHistory returns the most recent runs for root, newest first
func (m *Manager) GetHistory(root string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return m.query(selectRuns+`WHERE root = ? ORDER BY start_time DESC LIMIT ?`, root, limit)
}

// GetRecent returns the most recent runs across all roots, newest first
func (m *Manager) GetRecent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return m.query(selectRuns+`ORDER BY start_time DESC LIMIT ?`, limit)
}

// GetLastSuccess returns the last successful run for root, or nil
func (m *Manager) GetLastSuccess(root string) (*RunRecord, error) {
	records, err := m.query(selectRuns+`WHERE root = ? AND status = ? ORDER BY start_time DESC LIMIT 1`, root, StatusSuccess)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (m *Manager) query(query string, args ...any) ([]RunRecord, error) {
	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			record RunRecord
			errMsg sql.NullString
		)
		err := rows.Scan(
			&record.ID,
			&record.Root,
			&record.Query,
			&record.StartTime,
			&record.EndTime,
			&record.Status,
			&record.Visited,
			&record.Matched,
			&record.BytesMatched,
			&errMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		record.Error = errMsg.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
