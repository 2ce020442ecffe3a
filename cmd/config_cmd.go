package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/world-cities/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	// Skip loading config.yaml: it may be the file being replaced.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.InitLogger(config.LogConfig{Level: "info", Format: "console"})
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")

		if err := config.WriteDefault(path, force); err != nil {
			return err
		}

		zap.L().Debug("config written", zap.String("path", path))
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "config.yaml", "where to write the config file")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
