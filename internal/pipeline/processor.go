// Package pipeline runs one report document end to end: text extraction,
// parsing and output.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/export"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/ingest"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/parse"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/repository"
)

// Options apply to every document of a run.
type Options struct {
	Variant string // empty -> detect from the file name
	OutDir  string // empty -> the input's directory
	Base    string // empty -> the input's stem
}

// Result is the outcome of one document.
type Result struct {
	RunID    string
	Path     string
	Variant  string
	Method   string
	Pages    int
	Status   constants.RunStatus
	Stats    parse.Stats
	Outputs  []string
	Duration time.Duration
	Err      error
}

// Processor coordinates text extraction, parsing and writing.
type Processor struct {
	Logger *slog.Logger
	Text   *TextStage
	Parse  *ParseStage
	Writer export.Writer
	// Runs, when set, receives a FAILED extract_runs row for documents that
	// fail before their output transaction.
	Runs repository.Execer
}

func NewProcessor(logger *slog.Logger, text *TextStage, parse *ParseStage, w export.Writer) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Parse: parse, Writer: w}
}

// ProcessFile runs one document. Either every output table is written or
// none is.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts Options) (Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.Logger.With("run_id", runID, "path", path)
	ctx = common.WithRunID(ctx, runID)
	ctx = common.WithDocument(ctx, path)
	ctx = common.WithLogger(ctx, logger)

	res := Result{RunID: runID, Path: path, Status: constants.RunStatusRunning}
	fail := func(stage string, err error) (Result, error) {
		res.Status = constants.RunStatusFailed
		res.Err = err
		res.Duration = time.Since(start)
		logger.Error("pipeline.document.failed", "stage", stage, "code", common.CodeOf(err), "error", err)
		p.recordFailure(ctx, res, start)
		return res, err
	}

	v, err := p.Parse.Variant(opts.Variant, path)
	if err != nil {
		return fail("variant", err)
	}
	res.Variant = v.Name
	logger = logger.With("variant", v.Name)

	doc, err := p.Text.Run(ctx, path)
	res.Method = doc.Method
	res.Pages = len(doc.Pages)
	if err != nil {
		return fail("text", err)
	}

	tables, stats, err := p.Parse.Run(v, doc.Pages, logger)
	res.Stats = stats
	if err != nil {
		return fail("parse", err)
	}

	run := export.Run{
		ID:        runID,
		Source:    path,
		Variant:   v.Name,
		Base:      opts.Base,
		Dir:       opts.OutDir,
		StartedAt: start,
	}
	if run.Base == "" {
		run.Base = export.BaseName(path)
	}
	if run.Dir == "" {
		run.Dir = filepath.Dir(path)
	}
	outputs, err := p.Writer.Write(ctx, run, tables)
	if err != nil {
		return fail("write", common.OutputError("cannot write "+run.Base, err))
	}

	res.Outputs = outputs
	res.Status = constants.RunStatusOK
	res.Duration = time.Since(start)
	logger.Info("pipeline.document.ok",
		"records", stats.Records,
		"side_records", stats.TotalSide(),
		"lines", stats.Lines,
		"skipped", stats.SkippedTotal(),
		"outputs", len(outputs),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// ProcessAll runs every input in order. A failed document does not stop the
// others; the returned error joins all failures.
func (p *Processor) ProcessAll(ctx context.Context, inputs []ingest.Input, opts Options) ([]Result, error) {
	if opts.Base != "" && len(inputs) > 1 {
		return nil, common.NewAppError(common.CodeConfig, "--base needs exactly one input document", common.ErrInvalidInput)
	}
	results := make([]Result, 0, len(inputs))
	var errs []error
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := p.ProcessFile(ctx, in.Path, opts)
		results = append(results, res)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (p *Processor) recordFailure(ctx context.Context, res Result, start time.Time) {
	if p.Runs == nil {
		return
	}
	run := repository.Run{
		ID:          res.RunID,
		Source:      res.Path,
		Variant:     res.Variant,
		Base:        export.BaseName(res.Path),
		Records:     res.Stats.Records,
		SideRecords: res.Stats.TotalSide(),
		StartedAt:   start,
	}
	// Recorded even when ctx was canceled.
	if err := repository.RecordFailure(context.WithoutCancel(ctx), p.Runs, run, res.Err); err != nil {
		p.Logger.Warn("pipeline.run.record_failed", "run_id", res.RunID, "error", err)
	}
}
