// Package cli implements the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lifeodyssey/recruitreply/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "recruitreply",
	Short: "Document-grounded question answering for recruitment agents",
	Long: `recruitreply ingests recruitment documents, indexes them as embedded
chunks in a vector store, and answers candidate questions grounded in
the retrieved content.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.recruitreply/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
