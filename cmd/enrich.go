package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Re-run enrichment over the persisted combined collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Orchestrator.Enrich(ctx)
		if err != nil {
			return eris.Wrap(err, "enrich")
		}

		zap.L().Info("enrichment complete", zap.Int("locations", n))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
