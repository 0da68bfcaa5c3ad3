package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chainsafe/crosschain-issuer/pkg/app/issuer"
	"github.com/chainsafe/crosschain-issuer/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "issuectl",
	Short: "issuectl creates and issues tokens across an aelf main chain and side chain",
	Long: `issuectl runs the cross-chain issuance workflow in the foreground and prints
its progress. It also reads balances and sends transfers on the side chain.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Write service logs to stderr")
}

// connect loads the configuration and builds the chain components. The
// returned cleanup must be called when the command is done.
func connect(ctx context.Context, cmd *cobra.Command) (*issuer.Components, func(), error) {
	path, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if verbose {
		cfg.Logging.Format = "console"
		cfg.Logging.OutputPath = "stderr"
		logger, err = config.NewLogger(cfg.Logging)
		if err != nil {
			return nil, nil, fmt.Errorf("setup logger: %w", err)
		}
	}

	comps, err := issuer.NewComponents(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return comps, func() {
		comps.Close()
		_ = logger.Sync()
	}, nil
}
