package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jumpbot/internal/logger"
	"jumpbot/internal/sde"
)

var (
	historyLimit int
	historyClear bool
	olderThan    int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the catalog from files and store a snapshot in the database",
	Long: `Parse the catalog from the configured file source (csv or sde), validate
it, and replace the database snapshot. Later runs can use --source db to
start without the data files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Source == sde.SourceDB {
			return fmt.Errorf("import needs a file source (csv or sde), not %q", cfg.Source)
		}
		database, err := openDB(cfg, true)
		if err != nil {
			return err
		}
		defer database.Close()

		data, err := loadCatalog(cfg, nil)
		if err != nil {
			return err
		}
		// Refuse to snapshot a catalog the router would reject.
		if _, err := buildDispatcher(cfg, data); err != nil {
			return err
		}
		if err := database.SaveCatalog(data); err != nil {
			return fmt.Errorf("save catalog: %w", err)
		}
		data.LogStats()
		logger.Success("Import", fmt.Sprintf("Snapshot written to %s", cfg.DBPath))
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the query history recorded by the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDB(cfg, true)
		if err != nil {
			return err
		}
		defer database.Close()

		if historyClear {
			n, err := database.ClearQueries(olderThan)
			if err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			logger.Success("History", fmt.Sprintf("Deleted %d records", n))
			return nil
		}
		records := database.GetQueries(historyLimit)
		if jsonOutput {
			return writeJSONOut(os.Stdout, records)
		}
		fmt.Print(renderHistory(records))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSONOut(os.Stdout, cfg)
		}
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Number of records to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete records instead of listing them")
	historyCmd.Flags().IntVar(&olderThan, "older-than", 0, "With --clear, only delete records older than this many days")
	rootCmd.AddCommand(importCmd, historyCmd, configCmd)
}
