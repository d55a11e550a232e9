package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/ingest"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/parse"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/pipeline"
)

func extractCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "extract <file|dir>...",
		Short: "Extract tables from report files",
		Long: `Extract every record of each report into the chosen output format.

Directories are scanned recursively for .pdf and .txt files. Identical files
are processed once. A document that fails leaves no output behind; the
remaining documents still run and the command exits non-zero.

Example:
  assessx extract "2025 ECF Analysis.pdf"
  assessx extract --format xlsx --out-dir out/ reports/
  assessx extract --variant land-2026 --base land scan.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cfg); err != nil {
				return err
			}
			ctx := cmd.Context()

			inputs, stats, err := ingest.Resolve(ctx, args, ingest.Options{SkipHidden: f.skipHidden})
			if err != nil {
				return err
			}
			logger.Info("ingest.resolved",
				"inputs", len(inputs),
				"scanned", stats.Scanned,
				"deduplicated", stats.Deduplicated,
				"failed", stats.Failed,
			)
			if len(inputs) == 0 {
				return common.NewAppError(common.CodeInput, "no report files found", common.ErrInvalidInput)
			}

			p, cleanup, err := newProcessor(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			results, runErr := p.ProcessAll(ctx, inputs, pipeline.Options{
				Variant: cfg.Report.Variant,
				OutDir:  cfg.Output.Dir,
				Base:    f.base,
			})
			printSummary(cmd.OutOrStdout(), cmd.ErrOrStderr(), inputs, results)
			if runErr != nil {
				return fmt.Errorf("%d of %d documents failed", failed(results), len(inputs))
			}
			return nil
		},
	}
	f.register(cmd, cfg)
	return cmd
}

func failed(results []pipeline.Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func printSummary(out, errOut io.Writer, inputs []ingest.Input, results []pipeline.Result) {
	sizes := make(map[string]int64, len(inputs))
	for _, in := range inputs {
		sizes[in.Path] = in.Size
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Document", "Size", "Variant", "Method", "Pages", "Records", "Summaries", "Skipped", "Status"})
	table.SetAutoWrapText(false)

	var total parse.Stats
	for _, r := range results {
		total.Merge(r.Stats)
		table.Append([]string{
			filepath.Base(r.Path),
			humanize.Bytes(uint64(sizes[r.Path])),
			r.Variant,
			r.Method,
			strconv.Itoa(r.Pages),
			humanize.Comma(int64(r.Stats.Records)),
			humanize.Comma(int64(r.Stats.TotalSide())),
			humanize.Comma(int64(r.Stats.SkippedTotal())),
			string(r.Status),
		})
	}
	table.SetFooter([]string{"", "", "", "", "Total",
		humanize.Comma(int64(total.Records)),
		humanize.Comma(int64(total.TotalSide())),
		humanize.Comma(int64(total.SkippedTotal())),
		"",
	})
	table.Render()

	if reasons := total.SkippedReasons(); len(reasons) > 0 {
		fmt.Fprintln(out, "\nSkipped lines by reason:")
		for _, reason := range reasons {
			fmt.Fprintf(out, "  %-22s %s\n", reason, humanize.Comma(int64(total.Skipped[reason])))
		}
	}
	for _, r := range results {
		for _, o := range r.Outputs {
			fmt.Fprintln(out, "wrote", o)
		}
		if r.Err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", r.Path, r.Err)
		}
	}
}
