package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Run is one row of extract_runs.
type Run struct {
	ID          string
	Source      string
	Variant     string
	Base        string
	Status      constants.RunStatus
	Records     int
	SideRecords int
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

const runsDDL = `CREATE TABLE IF NOT EXISTS extract_runs (
	run_id       TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	variant      TEXT NOT NULL,
	base         TEXT NOT NULL,
	status       TEXT NOT NULL,
	records      INTEGER NOT NULL DEFAULT 0,
	side_records INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
)`

const runInsert = `INSERT INTO extract_runs
	(run_id, source, variant, base, status, records, side_records, error, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (run_id) DO UPDATE SET
		status = EXCLUDED.status,
		records = EXCLUDED.records,
		side_records = EXCLUDED.side_records,
		error = EXCLUDED.error,
		finished_at = EXCLUDED.finished_at`

// EnsureRunsTable creates extract_runs when missing.
func EnsureRunsTable(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, runsDDL); err != nil {
		return fmt.Errorf("create extract_runs: %w", err)
	}
	return nil
}

// InsertRun upserts a run row keyed by run ID.
func InsertRun(ctx context.Context, db Execer, r Run) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	if _, err := db.Exec(ctx, runInsert,
		r.ID, r.Source, r.Variant, r.Base, string(r.Status),
		r.Records, r.SideRecords, r.Error, r.StartedAt, r.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert extract_runs: %w", err)
	}
	return nil
}

// RecordFailure stores a FAILED run outside of any output transaction.
func RecordFailure(ctx context.Context, db Execer, r Run, cause error) error {
	r.Status = constants.RunStatusFailed
	if cause != nil {
		r.Error = cause.Error()
	}
	if err := EnsureRunsTable(ctx, db); err != nil {
		return err
	}
	return InsertRun(ctx, db, r)
}
