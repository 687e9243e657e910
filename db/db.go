package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	batch_start INTEGER NOT NULL,
	batch_end   INTEGER NOT NULL,
	link_count  INTEGER NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS link_outcomes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	link_index INTEGER NOT NULL,
	url        TEXT NOT NULL,
	video_id   TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_link_outcomes_run ON link_outcomes(run_id);`

// Outcome is the journaled result of processing one link.
type Outcome struct {
	Index   int
	URL     string
	VideoID string
	Status  string
	Reason  string
}

// Journal is an audit log of batch runs. It is write-mostly and is never used
// to decide whether a link should be processed.
type Journal struct {
	db *sql.DB
}

func Open(dbPath string) (*Journal, error) {
	logrus.WithField("path", dbPath).Info("Initializing run journal")

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating directory for database")
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	// A single writer, so one connection is enough.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "error creating tables")
	}

	return &Journal{db: conn}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// StartRun registers a new run and returns its id.
func (j *Journal) StartRun(ctx context.Context, batchStart, batchEnd, linkCount int) (string, error) {
	id := uuid.New().String()
	err := j.exec(ctx,
		"INSERT INTO runs (id, batch_start, batch_end, link_count, started_at) VALUES (?, ?, ?, ?, ?)",
		id, batchStart, batchEnd, linkCount, time.Now().UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (j *Journal) RecordOutcome(ctx context.Context, runID string, o Outcome) error {
	return j.exec(ctx,
		"INSERT INTO link_outcomes (run_id, link_index, url, video_id, status, reason, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		runID, o.Index, o.URL, o.VideoID, o.Status, o.Reason, time.Now().UTC(),
	)
}

func (j *Journal) FinishRun(ctx context.Context, runID string) error {
	return j.exec(ctx, "UPDATE runs SET finished_at = ? WHERE id = ?", time.Now().UTC(), runID)
}

// CountByStatus tallies the outcomes recorded for a run.
func (j *Journal) CountByStatus(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM link_outcomes WHERE run_id = ? GROUP BY status", runID)
	if err != nil {
		return nil, errors.Wrap(err, "error querying database")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		counts[status] = n
	}
	return counts, errors.Wrap(rows.Err(), "error iterating rows")
}

func (j *Journal) exec(ctx context.Context, query string, args ...interface{}) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error beginning transaction")
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error preparing statement")
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error executing statement")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}
	return nil
}
