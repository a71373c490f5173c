package calorific

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage household profiles",
}

var (
	profName      string
	profAvatar    string
	profSex       string
	profAge       int
	profHeight    float64
	profWeight    float64
	profTarget    float64
	profUnit      string
	profActivity  string
	profGoal      string
	profWeeks     int
	profUse       bool
	profDeleteYes bool
)

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := service.CreateProfile(sqldb, service.ProfileInput{
				Name:            profName,
				Avatar:          profAvatar,
				Sex:             profSex,
				Age:             profAge,
				HeightCm:        profHeight,
				Weight:          profWeight,
				TargetWeight:    profTarget,
				WeightUnit:      profUnit,
				ActivityLevel:   profActivity,
				Goal:            profGoal,
				LoseWeightWeeks: profWeeks,
			})
			if err != nil {
				return err
			}
			if profUse {
				if err := service.SetConfig(sqldb, service.ConfigActiveProfile, id); err != nil {
					return err
				}
			}
			logger.WithField("profile_id", id).Debug("profile created")
			fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s\n", id)
			return nil
		})
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			profiles, err := service.ListProfiles(sqldb)
			if err != nil {
				return err
			}
			active, _, err := service.GetConfig(sqldb, service.ConfigActiveProfile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ACTIVE\tID\tNAME\tGOAL\tWEIGHT")
			for _, p := range profiles {
				mark := ""
				if p.ID == active {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\n", mark, p.ID, p.Name, p.Goal, displayWeight(sqldb, p.WeightKg))
			}
			return nil
		})
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := profileArg(sqldb, args)
			if err != nil {
				return err
			}
			p, err := service.ProfileByID(sqldb, id)
			if err != nil {
				return err
			}
			printProfile(cmd, sqldb, p)
			return nil
		})
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update profile fields",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var patch service.ProfilePatch
		if f.Changed("name") {
			patch.Name = &profName
		}
		if f.Changed("avatar") {
			patch.Avatar = &profAvatar
		}
		if f.Changed("sex") {
			patch.Sex = &profSex
		}
		if f.Changed("age") {
			patch.Age = &profAge
		}
		if f.Changed("height") {
			patch.HeightCm = &profHeight
		}
		if f.Changed("weight") {
			patch.Weight = &profWeight
		}
		if f.Changed("target") {
			patch.TargetWeight = &profTarget
		}
		if f.Changed("activity") {
			patch.ActivityLevel = &profActivity
		}
		if f.Changed("goal") {
			patch.Goal = &profGoal
		}
		if f.Changed("weeks") {
			patch.LoseWeightWeeks = &profWeeks
		}
		patch.WeightUnit = profUnit
		if patch.Empty() {
			return fmt.Errorf("set at least one field flag")
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := profileArg(sqldb, args)
			if err != nil {
				return err
			}
			p, err := service.UpdateProfile(sqldb, id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated profile %s\n", p.ID)
			return nil
		})
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a profile with its food and weight logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			p, err := service.ProfileByID(sqldb, args[0])
			if err != nil {
				return err
			}
			if !profDeleteYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete profile %q and all of its logs?", p.Name)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
			if err := service.DeleteProfile(sqldb, p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %s\n", p.ID)
			return nil
		})
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a profile the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetConfig(sqldb, service.ConfigActiveProfile, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active profile: %s\n", args[0])
			return nil
		})
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show daily calorie and macro targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			p, t, err := service.ProfileTargets(sqldb, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s (%s)\n", p.Name, p.Goal)
			fmt.Fprintf(cmd.OutOrStdout(), "BMR: %.1f kcal | TDEE: %.1f kcal\n", t.BMR, t.TDEE)
			fmt.Fprintf(cmd.OutOrStdout(), "Target: %d kcal | P %dg | C %dg | F %dg\n", t.Calories, t.ProteinG, t.CarbsG, t.FatG)
			fmt.Fprintf(cmd.OutOrStdout(), "BMI: %.1f\n", t.BMI)
			if t.Floored {
				fmt.Fprintln(cmd.OutOrStdout(), "Note: target raised to the 1200 kcal minimum")
			}
			return nil
		})
	},
}

// profileArg uses the positional id when present, else --profile or the
// active profile.
func profileArg(sqldb *sql.DB, args []string) (string, error) {
	if len(args) == 1 {
		return service.ResolveProfile(sqldb, args[0])
	}
	return currentProfile(sqldb)
}

func printProfile(cmd *cobra.Command, sqldb *sql.DB, p model.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID: %s\n", p.ID)
	fmt.Fprintf(out, "Name: %s\n", p.Name)
	fmt.Fprintf(out, "Sex: %s | Age: %d | Height: %.1f cm\n", p.Sex, p.Age, p.HeightCm)
	fmt.Fprintf(out, "Weight: %s", displayWeight(sqldb, p.WeightKg))
	if p.TargetWeightKg > 0 {
		fmt.Fprintf(out, " | Target: %s", displayWeight(sqldb, p.TargetWeightKg))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Activity: %s | Goal: %s", p.ActivityLevel, p.Goal)
	if p.Goal == model.GoalLose && p.LoseWeightWeeks > 0 {
		fmt.Fprintf(out, " in %d weeks", p.LoseWeightWeeks)
	}
	fmt.Fprintln(out)
}

func init() {
	rootCmd.AddCommand(profileCmd, targetsCmd)
	profileCmd.AddCommand(profileAddCmd, profileListCmd, profileShowCmd, profileUpdateCmd, profileDeleteCmd, profileUseCmd)

	for _, c := range []*cobra.Command{profileAddCmd, profileUpdateCmd} {
		c.Flags().StringVar(&profName, "name", "", "Display name")
		c.Flags().StringVar(&profAvatar, "avatar", "", "Avatar (emoji or URL)")
		c.Flags().StringVar(&profSex, "sex", "", "male or female")
		c.Flags().IntVar(&profAge, "age", 0, "Age in years")
		c.Flags().Float64Var(&profHeight, "height", 0, "Height in cm")
		c.Flags().Float64Var(&profWeight, "weight", 0, "Current weight")
		c.Flags().Float64Var(&profTarget, "target", 0, "Target weight (0 for none)")
		c.Flags().StringVar(&profUnit, "unit", "kg", "Unit for --weight and --target (kg or lb)")
		c.Flags().StringVar(&profActivity, "activity", "", "Activity level: low, medium or high")
		c.Flags().StringVar(&profGoal, "goal", "", "Goal: lose, maintain or gain")
		c.Flags().IntVar(&profWeeks, "weeks", 0, "Weeks to reach the target weight when losing")
	}
	profileAddCmd.Flags().BoolVar(&profUse, "use", false, "Make the new profile active")
	profileDeleteCmd.Flags().BoolVarP(&profDeleteYes, "yes", "y", false, "Skip confirmation")
}
