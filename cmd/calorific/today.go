package calorific

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/service"
)

var (
	todayDate string
	trendFrom string
	trendTo   string
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's intake against targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			s, err := service.DailySummary(sqldb, id, todayDate)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\n", s.Date)
			fmt.Fprintf(out, "Intake: %d kcal (%d items)\n", s.Calories, s.Items)
			fmt.Fprintf(out, "Macros: P %.1fg | C %.1fg | F %.1fg\n", s.ProteinG, s.CarbsG, s.FatG)
			fmt.Fprintf(out, "Target: %d kcal | P %dg | C %dg | F %dg\n", s.Targets.Calories, s.Targets.ProteinG, s.Targets.CarbsG, s.Targets.FatG)
			fmt.Fprintf(out, "Remaining: %d kcal | P %.1fg | C %.1fg | F %.1fg\n", s.RemainingCalories, s.RemainingProteinG, s.RemainingCarbsG, s.RemainingFatG)
			if s.RemainingCalories < 0 {
				fmt.Fprintf(out, "Over target by %d kcal\n", -s.RemainingCalories)
			}
			fmt.Fprintf(out, "BMI: %.1f (%s)\n", s.Targets.BMI, s.BMICategory)
			return nil
		})
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show calories per day next to logged weight",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			points, err := service.Trend(sqldb, id, trendFrom, trendTo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "DATE\tKCAL\tWEIGHT")
			for _, p := range points {
				kcal, weight := "-", "-"
				if p.Calories != nil {
					kcal = fmt.Sprintf("%d", *p.Calories)
				}
				if p.WeightKg != nil {
					weight = displayWeight(sqldb, *p.WeightKg)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.Date, kcal, weight)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd, trendCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	trendCmd.Flags().StringVar(&trendFrom, "from", "", "Start date YYYY-MM-DD (default 6 days before --to)")
	trendCmd.Flags().StringVar(&trendTo, "to", "", "End date YYYY-MM-DD (default today)")
}
