package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twbmap/twb-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "twb-cli",
	Short:        "Toilets-with-bidets location pipeline",
	Long:         "Fetches the community spreadsheet and custom map, links and merges the records, classifies and enriches them, and serves the result as GeoJSON.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap()
	},
}

// bootstrap loads configuration and swaps in the configured global logger.
// Every subcommand runs through it, so cfg is always set by the time a RunE
// executes.
func bootstrap() error {
	c, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	cfg = c

	if err := config.InitLogger(cfg.Log); err != nil {
		return eris.Wrap(err, "init logger")
	}

	zap.L().Debug("config loaded",
		zap.Int("sheet_tabs", len(cfg.Sheets.Tabs)),
		zap.String("data_dir", cfg.Data.Dir),
	)
	return nil
}

func main() {
	err := rootCmd.Execute()
	_ = zap.L().Sync()
	if err != nil {
		os.Exit(1)
	}
}
