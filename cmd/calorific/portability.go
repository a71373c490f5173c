package calorific

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/service"
)

var (
	exportOut    string
	importIn     string
	importMode   string
	importDryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export profiles, food and weight logs as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(exportOut) == "" {
			return fmt.Errorf("--out is required")
		}
		return withDB(func(sqldb *sql.DB) error {
			snap, err := service.ExportSnapshot(sqldb)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal export json: %w", err)
			}
			if err := os.WriteFile(exportOut, b, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d profile(s), %d food item(s), %d weight entries to %s\n",
				len(snap.Profiles), len(snap.Foods), len(snap.Weights), exportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON export or a legacy browser-storage dump",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(importIn) == "" {
			return fmt.Errorf("--in is required")
		}
		mode, err := service.ParseImportMode(importMode)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(importIn)
		if err != nil {
			return fmt.Errorf("read import file: %w", err)
		}
		snap, version, err := service.ParseSnapshot(raw)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.ImportSnapshot(sqldb, snap, service.ImportOptions{Mode: mode, DryRun: importDryRun})
			if err != nil {
				return err
			}
			report.SourceVersion = version
			for _, w := range report.Warnings {
				logger.Warn(w)
			}
			prefix := "Imported"
			if report.DryRun {
				prefix = "Dry run: would import"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d profile(s), %d food item(s), %d weight entries (schema v%d, %d skipped)\n",
				prefix, report.ProfilesInserted, report.FoodsInserted, report.WeightsInserted, report.SourceVersion, report.Skipped)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output JSON file")
	importCmd.Flags().StringVar(&importIn, "in", "", "Input JSON file")
	importCmd.Flags().StringVar(&importMode, "mode", string(service.ImportModeMerge), "merge or replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate and count without writing")
}
