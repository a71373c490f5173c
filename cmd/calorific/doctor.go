package calorific

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			report, err := service.RunDoctor(sqldb, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Foreign keys enabled: %t\n", report.ForeignKeysEnabled)
			fmt.Fprintf(out, "Orphan food rows: %d\n", report.OrphanFoods)
			fmt.Fprintf(out, "Orphan weight rows: %d\n", report.OrphanWeights)
			fmt.Fprintf(out, "Bad food dates: %d\n", report.BadFoodDates)
			fmt.Fprintf(out, "Duplicate food rows: %d\n", report.DuplicateFoodRows)
			fmt.Fprintf(out, "Invalid profiles: %d\n", len(report.InvalidProfiles))
			for _, p := range report.InvalidProfiles {
				fmt.Fprintf(out, "  %s\n", p)
			}
			fmt.Fprintf(out, "Expired cache rows: %d\n", report.ExpiredCacheRows)
			if doctorFix {
				fmt.Fprintf(out, "Removed orphan rows: %d\n", report.FixedOrphanRows)
				fmt.Fprintf(out, "Purged cache rows: %d\n", report.PurgedCacheRows)
				// Re-check so the exit status reflects the final state.
				report, err = service.RunDoctor(sqldb, false)
				if err != nil {
					return err
				}
			}
			if report.Problems() {
				return fmt.Errorf("doctor found integrity issues")
			}
			fmt.Fprintln(out, "No problems found")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Delete orphaned rows and expired cache entries")
}
