package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/repository"
)

// PostgresWriter replaces one table per output table and records the run in
// extract_runs, all in a single transaction.
type PostgresWriter struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresWriter(pool *pgxpool.Pool, logger *slog.Logger) *PostgresWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWriter{pool: pool, logger: logger}
}

func (w *PostgresWriter) Write(ctx context.Context, run Run, tables []Table) (_ []string, err error) {
	start := time.Now()
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				w.logger.Warn("export.postgres.rollback_failed", "error", rbErr)
			}
		}
	}()

	targets := make([]string, 0, len(tables))
	for _, t := range tables {
		name := TableName(run.Base, t.Kind)
		if err = copyTable(ctx, tx, name, t); err != nil {
			return nil, err
		}
		targets = append(targets, "postgres:"+name)
	}

	records, sides := Counts(tables)
	if err = repository.EnsureRunsTable(ctx, tx); err != nil {
		return nil, err
	}
	if err = repository.InsertRun(ctx, tx, repository.Run{
		ID:          run.ID,
		Source:      run.Source,
		Variant:     run.Variant,
		Base:        run.Base,
		Status:      constants.RunStatusOK,
		Records:     records,
		SideRecords: sides,
		StartedAt:   run.StartedAt,
		FinishedAt:  time.Now(),
	}); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	w.logger.Info("export.postgres.ok",
		"run_id", run.ID,
		"tables", len(tables),
		"records", records,
		"side_records", sides,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return targets, nil
}

func copyTable(ctx context.Context, tx pgx.Tx, name string, t Table) error {
	ident := pgx.Identifier{name}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, createTableSQL(ident.Sanitize(), t.Columns)); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	rows := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = rowArgs(row, len(t.Columns))
	}
	if _, err := tx.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}
