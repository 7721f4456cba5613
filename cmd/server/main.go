package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rippleeffect/charity-service/internal/config"
	"github.com/rippleeffect/charity-service/internal/pkg/logger"
)

var (
	configPath string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "charityd",
	Short: "Charity directory and round-up donation service",
	Long: `charityd verifies charity names with a text-generation model, keeps the
shared charity directory and each user's interest list, and tracks round-up
balances paid out through Stripe Checkout.

Run without arguments to start the servers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CHARITY_CONFIG"), "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, verifyCmd, nearbyCmd, directoryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
