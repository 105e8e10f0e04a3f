package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// PostedJob is one persisted ledger entry. Entries are created on first
// successful delivery and never updated or deleted.
type PostedJob struct {
	Triple    string
	Link      string
	Source    string
	FirstSeen time.Time
}

// SQLiteStore is the durable ledger of jobs already posted, keyed by the
// lowercased company|title|location triple. The primary-key constraint is
// what makes Admit safe against overlapping cycles: at most one insert per
// triple can ever succeed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the ledger database at dbPath and
// ensures the posted_jobs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS posted_jobs (
		triple     TEXT PRIMARY KEY,
		link       TEXT NOT NULL DEFAULT '',
		source     TEXT NOT NULL DEFAULT '',
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS posted_jobs_link ON posted_jobs(link);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating posted_jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Exists returns true if the triple key has already been posted.
func (s *SQLiteStore) Exists(key string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM posted_jobs WHERE triple = ?", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking triple %s: %w", key, err)
	}
	return true, nil
}

// ExistsLink returns true if any posted job carries the given link. Only
// consulted for sources configured with link-based secondary dedup.
func (s *SQLiteStore) ExistsLink(link string) (bool, error) {
	if link == "" {
		return false, nil
	}
	var one int
	err := s.db.QueryRow("SELECT 1 FROM posted_jobs WHERE link = ?", link).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking link %s: %w", link, err)
	}
	return true, nil
}

// Admit records a triple as posted. It returns true only when this call
// inserted the row; a duplicate admit is a no-op reported as false, never
// an error.
func (s *SQLiteStore) Admit(key, link, source string) (bool, error) {
	res, err := s.db.Exec(
		"INSERT OR IGNORE INTO posted_jobs (triple, link, source) VALUES (?, ?, ?)",
		key, link, source,
	)
	if err != nil {
		return false, fmt.Errorf("admitting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("admitting %s: %w", key, err)
	}
	return n == 1, nil
}

// All returns every ledger entry, newest first. Used by the audit view.
func (s *SQLiteStore) All(ctx context.Context) ([]PostedJob, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT triple, link, source, first_seen FROM posted_jobs ORDER BY first_seen DESC")
	if err != nil {
		return nil, fmt.Errorf("listing posted jobs: %w", err)
	}
	defer rows.Close()

	var out []PostedJob
	for rows.Next() {
		var p PostedJob
		if err := rows.Scan(&p.Triple, &p.Link, &p.Source, &p.FirstSeen); err != nil {
			return nil, fmt.Errorf("scanning posted job: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of ledger entries.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM posted_jobs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting posted jobs: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
