package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
)

const sqliteRunsDDL = `CREATE TABLE IF NOT EXISTS extract_runs (
	run_id       TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	variant      TEXT NOT NULL,
	base         TEXT NOT NULL,
	status       TEXT NOT NULL,
	records      INTEGER NOT NULL,
	side_records INTEGER NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT NOT NULL
)`

const sqliteRunInsert = `INSERT INTO extract_runs
	(run_id, source, variant, base, status, records, side_records, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteWriter writes every table of a run into <base>.sqlite, replacing
// tables of the same name, and appends an extract_runs row. The whole run is
// one transaction.
type SQLiteWriter struct {
	logger *slog.Logger
}

func NewSQLiteWriter(logger *slog.Logger) *SQLiteWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteWriter{logger: logger}
}

func (w *SQLiteWriter) Write(ctx context.Context, run Run, tables []Table) ([]string, error) {
	start := time.Now()
	if err := os.MkdirAll(run.Dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(run.Dir, run.Base+".sqlite")
	_, statErr := os.Stat(path)
	existed := statErr == nil

	err := w.write(ctx, path, run, tables)
	if err != nil {
		if !existed {
			_ = os.Remove(path)
		}
		return nil, err
	}

	records, sides := Counts(tables)
	w.logger.Info("export.sqlite.ok",
		"run_id", run.ID,
		"path", path,
		"tables", len(tables),
		"records", records,
		"side_records", sides,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []string{path}, nil
}

func (w *SQLiteWriter) write(ctx context.Context, path string, run Run, tables []Table) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				w.logger.Warn("export.sqlite.rollback_failed", "error", rbErr)
			}
		}
	}()

	for _, t := range tables {
		if err = insertTable(ctx, tx, TableName(run.Base, t.Kind), t); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, sqliteRunsDDL); err != nil {
		return fmt.Errorf("create extract_runs: %w", err)
	}
	records, sides := Counts(tables)
	if _, err = tx.ExecContext(ctx, sqliteRunInsert,
		run.ID, run.Source, run.Variant, run.Base, string(constants.RunStatusOK),
		records, sides, run.StartedAt.UTC().Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("insert extract_runs: %w", err)
	}
	return tx.Commit()
}

func insertTable(ctx context.Context, tx *sql.Tx, name string, t Table) error {
	ident := quoteIdent(name)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(ident, t.Columns)); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL(ident, t.Columns))
	if err != nil {
		return fmt.Errorf("prepare %s: %w", name, err)
	}
	defer stmt.Close()
	for _, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, rowArgs(row, len(t.Columns))...); err != nil {
			return fmt.Errorf("insert %s: %w", name, err)
		}
	}
	return nil
}
