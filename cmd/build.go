package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/config"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Download, enrich and write the world cities table",
	Long: `Runs one full build:

  1. download the cities archive and extract the dump into the work dir
  2. write the full-schema intermediate CSV next to it
  3. download the admin1 table and resolve country and subdivision names
  4. write the output CSV and any configured exports
  5. delete the two intermediate files (unless --keep-temp)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *cfg
		if cmd.Flags().Changed("output") {
			c.Output.Path, _ = cmd.Flags().GetString("output")
		}
		if cmd.Flags().Changed("work-dir") {
			c.Output.WorkDir, _ = cmd.Flags().GetString("work-dir")
		}
		if cmd.Flags().Changed("keep-temp") {
			c.Output.KeepTemp, _ = cmd.Flags().GetBool("keep-temp")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		return runBuild(cmd, &c)
	},
}

func init() {
	buildCmd.Flags().String("output", "", "output CSV path (overrides output.path)")
	buildCmd.Flags().String("work-dir", "", "directory for intermediate files (overrides output.work_dir)")
	buildCmd.Flags().Bool("keep-temp", false, "keep the extracted dump and intermediate CSV")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, c *config.Config) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "build"))

	env, err := initBuild(ctx, c)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.Pipeline.Run(ctx)
	if err != nil {
		return eris.Wrap(err, "build")
	}

	log.Info("build finished",
		zap.String("run_id", result.RunID.String()),
		zap.Strings("exports", result.Exports),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s cities to %s (%d skipped, %d unresolved countries, %d without subdivision) in %s\n",
		humanize.Comma(int64(result.Cities)),
		result.OutputPath,
		result.Skipped,
		result.UnresolvedCountries,
		result.UnresolvedSubdivisions,
		result.Elapsed.Round(time.Millisecond),
	)
	return nil
}
