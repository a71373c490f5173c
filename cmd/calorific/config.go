package calorific

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored preferences",
}

var (
	cfgActiveProfile string
	cfgWeightUnit    string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			updates := 0
			if cmd.Flags().Changed("active-profile") {
				if err := service.SetConfig(sqldb, service.ConfigActiveProfile, cfgActiveProfile); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("weight-unit") {
				if err := service.SetConfig(sqldb, service.ConfigWeightUnit, cfgWeightUnit); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show stored configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			cfg, err := service.ListConfig(sqldb)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(cfg))
			for k := range cfg {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", k, cfg[k])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)

	configSetCmd.Flags().StringVar(&cfgActiveProfile, "active-profile", "", "Profile id used when --profile is not given")
	configSetCmd.Flags().StringVar(&cfgWeightUnit, "weight-unit", "", "Display unit for weights (kg or lb)")
}
