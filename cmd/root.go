package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "world-cities",
	Short: "Build the world cities table from GeoNames",
	Long: `Downloads the GeoNames cities15000 dump and the admin1 code table,
resolves country and subdivision names, and writes data/world-cities.csv.

Running without a subcommand performs a build.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, cfg)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
