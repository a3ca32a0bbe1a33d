package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parcelworks/siteassess/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "siteassess",
	Short: "Location assessment pipeline for community comparison reports",
	Long:  "Geocodes community addresses, searches nearby POIs per configured field, classifies distances against comparison rules, and emits a grouped assessment workbook.",
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
