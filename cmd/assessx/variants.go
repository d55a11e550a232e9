package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/srinivasmd/PittsfieldTownshipPropertyTax/internal/common"
)

func variantsCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var (
		dir     string
		columns bool
	)
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List the known report variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Report.VariantsDir = dir
			reg, err := loadRegistry(cfg, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if columns {
				for _, v := range reg.Variants() {
					fmt.Fprintf(out, "%s\n  %s\n", v.Name, strings.Join(v.Columns(), ", "))
					for _, s := range v.SideKinds() {
						fmt.Fprintf(out, "  %s: %s\n", s.Kind, strings.Join(s.Columns, ", "))
					}
				}
				return nil
			}

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Name", "Kind", "Year", "Mode", "Side tables", "Description"})
			table.SetAutoWrapText(false)
			for _, v := range reg.Variants() {
				var sides []string
				for _, s := range v.SideKinds() {
					sides = append(sides, s.Kind)
				}
				table.Append([]string{v.Name, string(v.Kind), strconv.Itoa(v.Year), v.Mode, strings.Join(sides, ", "), v.Description})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "variants-dir", cfg.Report.VariantsDir, "directory of extra YAML/JSON variants")
	cmd.Flags().BoolVar(&columns, "columns", false, "print output columns instead of the overview")
	return cmd
}

func detectCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "detect <file>...",
		Short: "Show which variant each file name selects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Report.VariantsDir = dir
			reg, err := loadRegistry(cfg, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			misses := 0
			for _, path := range args {
				v, err := reg.Detect(path)
				if err != nil {
					misses++
					fmt.Fprintf(out, "%s\t-\t%v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", path, v.Name)
			}
			if misses > 0 {
				return fmt.Errorf("%d of %d files matched no variant", misses, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "variants-dir", cfg.Report.VariantsDir, "directory of extra YAML/JSON variants")
	return cmd
}
