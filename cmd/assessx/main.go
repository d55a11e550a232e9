// Command assessx converts township assessment report PDFs (ECF analyses,
// sales studies and land analyses) into tabular files or database tables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/constants"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/pipeline"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/report"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/repository"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/textsource"
)

var version = "0.3.0"

// flags shared by extract and watch.
type runFlags struct {
	variant     string
	format      string
	outDir      string
	base        string
	variantsDir string
	backend     string
	pdftotext   string
	maxPages    int
	skipHidden  bool
}

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "assessx",
		Short: "Extract assessment report tables",
		Long: `assessx reads assessment report PDFs or their plain-text renditions,
classifies every line against a report layout and writes one table of
property records plus one table per summary kind.

Layouts are picked from the file name ("2025 ECF Analysis.pdf" -> ecf-2025)
unless --variant names one.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(extractCmd(cfg, logger))
	rootCmd.AddCommand(watchCmd(cfg, logger))
	rootCmd.AddCommand(variantsCmd(cfg, logger))
	rootCmd.AddCommand(detectCmd(cfg, logger))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func (f *runFlags) register(cmd *cobra.Command, cfg *common.Config) {
	fl := cmd.Flags()
	fl.StringVar(&f.variant, "variant", cfg.Report.Variant, "report variant (default: detect from file name)")
	fl.StringVar(&f.format, "format", string(cfg.Output.Format), "output format: csv, xlsx, sqlite, postgres")
	fl.StringVar(&f.outDir, "out-dir", cfg.Output.Dir, "output directory (default: next to each input)")
	fl.StringVar(&f.base, "base", "", "output base name (single input only)")
	fl.StringVar(&f.variantsDir, "variants-dir", cfg.Report.VariantsDir, "directory of extra YAML/JSON variants")
	fl.StringVar(&f.backend, "backend", cfg.Source.Backend, "text backend: auto, pdftotext, native, text")
	fl.StringVar(&f.pdftotext, "pdftotext", cfg.Source.Pdftotext, "pdftotext binary")
	fl.IntVar(&f.maxPages, "max-pages", cfg.Source.MaxPages, "read at most this many pages per document (0 = all); a warning is logged when pages are dropped")
	fl.BoolVar(&f.skipHidden, "skip-hidden", true, "skip dot files when scanning directories")
}

// apply copies flag values onto cfg and validates the result.
func (f *runFlags) apply(cfg *common.Config) error {
	c := *cfg
	c.Report.Variant = f.variant
	c.Report.VariantsDir = f.variantsDir
	c.Output.Format = constants.OutputFormat(f.format)
	if format, ok := constants.ParseOutputFormat(f.format); ok {
		c.Output.Format = format
	}
	c.Output.Dir = f.outDir
	c.Source.Backend = f.backend
	c.Source.Pdftotext = f.pdftotext
	c.Source.MaxPages = f.maxPages
	if err := c.Validate(); err != nil {
		return err
	}
	*cfg = c
	return nil
}

func loadRegistry(cfg *common.Config, logger *slog.Logger) (*report.Registry, error) {
	reg := report.NewRegistry()
	if cfg.Report.VariantsDir == "" {
		return reg, nil
	}
	n, err := reg.LoadDir(cfg.Report.VariantsDir, logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "cannot load variants from "+cfg.Report.VariantsDir, err)
	}
	logger.Info("report.variants.loaded", "dir", cfg.Report.VariantsDir, "count", n)
	return reg, nil
}

// newProcessor wires the pipeline for cfg. The returned cleanup closes the
// database pool when one was opened.
func newProcessor(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, func(), error) {
	reg, err := loadRegistry(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	src := textsource.New(textsource.Config{
		Backend:   cfg.Source.Backend,
		Pdftotext: cfg.Source.Pdftotext,
		Timeout:   cfg.Source.Timeout,
		MaxPages:  cfg.Source.MaxPages,
	}, logger)

	cleanup := func() {}
	var runs repository.Execer
	var pool *pgxpool.Pool
	if cfg.Output.Format == constants.OutputPostgres {
		pool, err = repository.Open(ctx, repository.Config{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, nil, common.NewAppError(common.CodeConfig, "cannot connect to database", err)
		}
		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
			repository.Close(pool, logger)
			return nil, nil, common.NewAppError(common.CodeConfig, "database health check failed", err)
		}
		cleanup = func() { repository.Close(pool, logger) }
		runs = pool
	}

	w, err := pipeline.NewWriter(cfg.Output.Format, pool, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	p := pipeline.NewProcessor(logger,
		pipeline.NewTextStage(src, logger),
		pipeline.NewParseStage(reg, logger),
		w,
	)
	p.Runs = runs
	return p, cleanup, nil
}
