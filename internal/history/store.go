// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite log of pipeline runs: one row per run and
// one row per evaluated paper.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/pdiddy/paper-digest/internal/pipeline"
)

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating history directory")
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating schema")
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			outcome TEXT NOT NULL,
			retrieved INTEGER NOT NULL,
			relevant INTEGER NOT NULL,
			fragments INTEGER NOT NULL,
			notified INTEGER NOT NULL,
			notify_error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			short_id TEXT,
			title TEXT,
			stage TEXT NOT NULL,
			relevant INTEGER NOT NULL,
			included INTEGER NOT NULL,
			reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_run_id ON evaluations(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(err, "executing schema statement")
		}
	}
	return nil
}

// Record stores report and its evaluations in one transaction.
func (s *Store) Record(ctx context.Context, report pipeline.Report) error {
	if report.RunID == "" {
		return errors.New("report has no run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	var notifyErr sql.NullString
	if report.NotifyErr != nil {
		notifyErr = sql.NullString{String: report.NotifyErr.Error(), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, outcome, retrieved, relevant, fragments, notified, notify_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.Started.UTC().Format(time.RFC3339Nano),
		report.Finished.UTC().Format(time.RFC3339Nano),
		report.Outcome.String(),
		report.Retrieved,
		report.Relevant,
		len(report.Fragments),
		report.Notified,
		notifyErr,
	); err != nil {
		return errors.Wrapf(err, "inserting run %s", report.RunID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO evaluations (run_id, position, short_id, title, stage, relevant, included, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing evaluation insert")
	}
	defer stmt.Close()

	for i, e := range report.Evaluations {
		if _, err := stmt.ExecContext(ctx, report.RunID, i, e.ShortID, e.Title, string(e.Stage), e.Relevant, e.Included, e.Reason); err != nil {
			return errors.Wrapf(err, "inserting evaluation %s", e.ShortID)
		}
	}

	return errors.Wrap(tx.Commit(), "committing run")
}

// RecordReport opens the database at path, records report, and closes it.
func RecordReport(ctx context.Context, path string, report pipeline.Report) error {
	s, err := Open(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Record(ctx, report)
}
