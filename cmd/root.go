package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadclean/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadclean",
	Short: "Contact-list cleaning and enrichment pipeline",
	Long:  "Parses exported contact lists (CSV/XLSX), filters and deduplicates contacts, classifies mail providers via DNS-over-HTTPS MX lookups, normalizes companies and domains, suppresses over-represented domains, and pairs each contact with an alternative from the same company.",
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
