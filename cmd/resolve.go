package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mbellgrove/linkweaver/internal/resource"
)

// newResolveCmd creates the 'resolve' subcommand, a one-shot resolution
// of a single URL printed as JSON.
func newResolveCmd() *cobra.Command {
	var origin string
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Resolve one URL and print the enriched resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			pipe, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			resolved, err := pipe.Transform(cmd.Context(), resource.New(args[0], origin, ""))
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}

			logger.Debug("resolution finished",
				zap.String("origin_url", args[0]),
				zap.String("final_url", resolved.URI),
				zap.String("kind", string(resolved.Kind)),
			)

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(resolved); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			if resolved.IsInvalid() && resolved.Err != nil {
				return fmt.Errorf("resolution failed: %w", resolved.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "cli", "origin identifier recorded on the resource")
	return cmd
}
