package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tourbase/pricing-engine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "pricing-cli",
	Short: "Pricing and commission rule-resolution engine",
	Long:  "Resolves sell prices and commissions from prioritized markup/commission rules, including multi-level B2B resale pricing over the tenant hierarchy.",
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
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
