package calorific

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/service"
)

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Log weight and track progress",
}

var (
	weightDate string
	weightUnit string
)

var weightAddCmd = &cobra.Command{
	Use:   "add <weight>",
	Short: "Record weight for a date (replaces an existing entry)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parsePositiveFloat("weight", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			unit := weightUnit
			if unit == "" {
				if unit, err = service.PreferredWeightUnit(sqldb); err != nil {
					return err
				}
			}
			entry, err := service.UpsertWeight(sqldb, id, service.WeightInput{Date: weightDate, Weight: value, Unit: unit})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s on %s\n", displayWeight(sqldb, entry.WeightKg), entry.Date)
			return nil
		})
	},
}

var weightListCmd = &cobra.Command{
	Use:   "list",
	Short: "List weight entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			entries, err := service.ListWeights(sqldb, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DATE\tWEIGHT")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Date, displayWeight(sqldb, e.WeightKg))
			}
			return nil
		})
	},
}

var weightDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Delete the weight entry for a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.DeleteWeight(sqldb, id, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted weight entry for %s\n", args[0])
			return nil
		})
	},
}

var weightProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show progress toward the target weight",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			r, err := service.WeightProgressFor(sqldb, id)
			if err != nil {
				return err
			}
			p := r.Progress
			fmt.Fprintf(cmd.OutOrStdout(), "Goal: %s\n", r.Goal)
			fmt.Fprintf(cmd.OutOrStdout(), "Start: %s | Current: %s | Target: %s\n",
				displayWeight(sqldb, p.StartKg), displayWeight(sqldb, p.CurrentKg), displayWeight(sqldb, p.TargetKg))
			fmt.Fprintf(cmd.OutOrStdout(), "Progress: %.0f%% | To go: %s\n", p.Percent, displayWeight(sqldb, p.ToGoKg))
			fmt.Fprintf(cmd.OutOrStdout(), "BMI: %.1f (%s)\n", r.BMI, r.Category)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(weightCmd)
	weightCmd.AddCommand(weightAddCmd, weightListCmd, weightDeleteCmd, weightProgressCmd)

	weightAddCmd.Flags().StringVar(&weightDate, "date", "", "Date YYYY-MM-DD (default today)")
	weightAddCmd.Flags().StringVar(&weightUnit, "unit", "", "kg or lb (default: configured weight_unit)")
}
