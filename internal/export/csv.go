package export

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"time"
)

// CSVWriter writes one comma-separated file per table.
type CSVWriter struct {
	logger *slog.Logger
}

func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

func (w *CSVWriter) Write(ctx context.Context, run Run, tables []Table) ([]string, error) {
	start := time.Now()
	paths, err := writeStaged(ctx, run.Dir, fileNames(run.Base, tables, "csv"), func(i int, out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write(tables[i].Columns); err != nil {
			return err
		}
		return cw.WriteAll(tables[i].Rows)
	})
	if err != nil {
		return nil, err
	}
	records, sides := Counts(tables)
	w.logger.Info("export.csv.ok",
		"run_id", run.ID,
		"files", len(paths),
		"records", records,
		"side_records", sides,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return paths, nil
}
