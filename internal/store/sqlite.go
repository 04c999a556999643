package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobtrend/internal/model"
)

// SQLiteStore keeps a history of collection runs and how many records each
// source contributed, so a source that silently drifts to zero shows up.
type SQLiteStore struct {
	db *sql.DB
}

var _ model.RunRecorder = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the history tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at       INTEGER NOT NULL,
			finished_at      INTEGER NOT NULL,
			total            INTEGER NOT NULL,
			snapshot_written INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_sources (
			run_id   INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			source   TEXT    NOT NULL,
			count    INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating history tables: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// RecordRun stores one run and its per-source counts in a single transaction.
func (s *SQLiteStore) RecordRun(ctx context.Context, run model.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs (started_at, finished_at, total, snapshot_written) VALUES (?, ?, ?, ?)",
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Total, boolToInt(run.SnapshotWritten),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	for i, sc := range run.Sources {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO run_sources (run_id, position, source, count) VALUES (?, ?, ?, ?)",
			runID, i, sc.Source, sc.Count,
		)
		if err != nil {
			return fmt.Errorf("recording count for %s: %w", sc.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, total, snapshot_written FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	var ids []int64
	var runs []model.RunRecord
	for rows.Next() {
		var (
			id                int64
			started, finished int64
			total, written    int
		)
		if err := rows.Scan(&id, &started, &finished, &total, &written); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		ids = append(ids, id)
		runs = append(runs, model.RunRecord{
			StartedAt:       time.UnixMilli(started),
			FinishedAt:      time.UnixMilli(finished),
			Total:           total,
			SnapshotWritten: written != 0,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	for i, id := range ids {
		sources, err := s.runSources(ctx, id)
		if err != nil {
			return nil, err
		}
		runs[i].Sources = sources
	}
	return runs, nil
}

func (s *SQLiteStore) runSources(ctx context.Context, runID int64) ([]model.SourceCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source, count FROM run_sources WHERE run_id = ? ORDER BY position",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing counts for run %d: %w", runID, err)
	}
	defer rows.Close()

	var out []model.SourceCount
	for rows.Next() {
		var sc model.SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scanning count for run %d: %w", runID, err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Cleanup deletes runs that started longer than olderThan ago.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM run_sources WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up runs older than %v: %w", olderThan, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff); err != nil {
		return fmt.Errorf("cleaning up runs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
