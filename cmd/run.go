package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twbmap/twb-cli/internal/pipeline"
)

var (
	runForceRefresh bool
	runSkipEnrich   bool
	runXLSXPath     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full fetch, merge, classify, enrich pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		stats, err := env.Orchestrator.Run(ctx, pipeline.Options{
			ForceRefresh: runForceRefresh,
			SkipEnrich:   runSkipEnrich,
			XLSXPath:     runXLSXPath,
		})
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("run complete",
			zap.Int("sheet_records", stats.SheetRecords),
			zap.Int("map_records", stats.MapRecords),
			zap.Int("matched", stats.Matched),
			zap.Int("sheet_only", stats.SheetOnly),
			zap.Int("map_only", stats.MapOnly),
			zap.Int("locations", stats.Locations),
			zap.Int("fetch_failures", stats.FetchFailures),
		)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runForceRefresh, "force-refresh", false, "bypass the raw-payload cache")
	runCmd.Flags().BoolVar(&runSkipEnrich, "skip-enrich", false, "stop after writing the combined collection")
	runCmd.Flags().StringVar(&runXLSXPath, "xlsx", "", "parse a local workbook export instead of fetching the live sheet")
	rootCmd.AddCommand(runCmd)
}
