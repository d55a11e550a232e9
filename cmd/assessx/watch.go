package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/ingest"
	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/pipeline"
)

func watchCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var (
		f        runFlags
		existing bool
		debounce time.Duration
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Extract report files as they appear in a directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(cfg); err != nil {
				return err
			}
			if f.base != "" {
				return common.NewAppError(common.CodeConfig, "--base cannot be used with watch", common.ErrInvalidInput)
			}
			ctx := cmd.Context()

			p, cleanup, err := newProcessor(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			files, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
				Roots:       args,
				InitialScan: existing,
				Debounce:    debounce,
				SkipHidden:  f.skipHidden,
			}, logger)
			if err != nil {
				return err
			}
			logger.Info("watch.started", "roots", args, "format", cfg.Output.Format)

			q := pipeline.NewQueue(p, pipeline.Options{Variant: cfg.Report.Variant, OutDir: cfg.Output.Dir}, logger,
				pipeline.WithWorkers(workers),
				pipeline.WithProcessTimeout(cfg.Source.Timeout+time.Minute),
			)
			defer func() {
				drain, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
				defer cancel()
				q.Shutdown(drain)
				logger.Info("watch.stopped")
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					logger.Warn("watch.error", "error", err)
				case path, ok := <-files:
					if !ok {
						return nil
					}
					if _, err := q.Enqueue(ctx, path); err != nil {
						return nil
					}
				}
			}
		},
	}
	f.register(cmd, cfg)
	cmd.Flags().BoolVar(&existing, "existing", false, "process files already present at startup")
	cmd.Flags().IntVar(&workers, "workers", 2, "documents processed concurrently")
	cmd.Flags().DurationVar(&debounce, "debounce", 750*time.Millisecond, "quiet period before a changed file is processed")
	return cmd
}
