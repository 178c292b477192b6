package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jumpbot/internal/config"
	"jumpbot/internal/logger"
)

var version = "dev"

var (
	configPath string
	dataDir    string
	source     string
	jsonOutput bool
	debugFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "jumpbot",
	Short: "Stargate routing for New Eden",
	Long: `jumpbot answers jump-count questions over the EVE Online stargate map:
shortest, nullsec-avoiding and lowsec-only routes, multi-stop itineraries,
distances from popular trade systems and the nearest evac, trade hub or station.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("jumpbot {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./jumpbot.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Catalog data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Catalog source: csv, sde or db (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// loadConfig applies command-line overrides on top of the file and environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		if cfg.DBPath == filepath.Join(cfg.DataDir, dbFile) {
			cfg.DBPath = filepath.Join(dataDir, dbFile)
		}
		cfg.DataDir = dataDir
	}
	if source != "" {
		cfg.Source = strings.ToLower(source)
	}
	if debugFlag {
		cfg.DebugLogging = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.SetDebug(cfg.DebugLogging)
	if jsonOutput {
		logger.SetOutput(os.Stderr)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("CLI", err.Error())
		fmt.Fprintln(os.Stderr, "Run 'jumpbot --help' for usage.")
		os.Exit(1)
	}
}
