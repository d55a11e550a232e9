package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	primarySheet = "Records"
	maxSheetName = 31
	minColWidth  = 10
	maxColWidth  = 60
)

// XLSXWriter writes one workbook per table.
type XLSXWriter struct {
	logger *slog.Logger
}

func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

func (w *XLSXWriter) Write(ctx context.Context, run Run, tables []Table) ([]string, error) {
	start := time.Now()
	paths, err := writeStaged(ctx, run.Dir, fileNames(run.Base, tables, "xlsx"), func(i int, out io.Writer) error {
		return writeWorkbook(out, tables[i])
	})
	if err != nil {
		return nil, err
	}
	records, sides := Counts(tables)
	w.logger.Info("export.xlsx.ok",
		"run_id", run.ID,
		"files", len(paths),
		"records", records,
		"side_records", sides,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return paths, nil
}

func sheetName(kind string) string {
	if kind == "" {
		return primarySheet
	}
	if len(kind) > maxSheetName {
		return kind[:maxSheetName]
	}
	return kind
}

// writeWorkbook renders t as a single-sheet workbook: a header row, then one
// text cell per value.
func writeWorkbook(out io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(t.Kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	widths := make([]int, len(t.Columns))
	write := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(v); col < len(widths) && n > widths[col] {
			widths[col] = n
		}
		return f.SetCellStr(sheet, cell, v)
	}

	for c, h := range t.Columns {
		if err := write(c, 1, h); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for c, v := range row {
			if err := write(c, r+2, v); err != nil {
				return err
			}
		}
	}

	for c, n := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := float64(min(max(n+2, minColWidth), maxColWidth))
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
