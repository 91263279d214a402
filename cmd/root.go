// Package cmd defines and implements the CLI commands for the
// linkweaver executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mbellgrove/linkweaver/internal/config"
	"github.com/mbellgrove/linkweaver/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linkweaver",
		Short: "Resolve raw link references into enriched resource records",
		Long: `linkweaver chases redirect chains (HTTP 3xx and zero-delay
meta-refresh), strips tracking parameters, classifies terminal content,
and enriches text pages with social-graph metadata and readable
article extraction.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	root.AddCommand(newResolveCmd())
	root.AddCommand(newServeCmd())
	return root
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime builds the configuration and logger shared by commands.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}
