package main

import (
	"fmt"
	"os"

	"MarketLens/internal/config"
	"MarketLens/internal/logging"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "marketlens",
	Short: "Stock analysis: cached market data, indicators, scores and risk",
	Long: `MarketLens fetches daily bars and fundamentals for a stock, caches the
bars locally, and derives technical indicators, fundamental category scores
and risk statistics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		logging.Setup(c.Log.Level, c.Log.Format)
		cfg = c
		return nil
	},
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to the YAML config file")

	rootCmd.AddCommand(analyzeCmd, serveCmd, evictCmd)
}
