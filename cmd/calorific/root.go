package calorific

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/app"
)

var (
	dbPath      string
	configFile  string
	logLevel    string
	profileFlag string

	settings app.Settings
	logger   *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "calorific",
	Short: "calorific tracks calories, macros and weight for household profiles",
	Long: "calorific is a local-first calorie tracker: per-profile daily targets, a food log " +
		"with AI estimates from photos or descriptions, and a weight log with progress.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := app.LoadSettings(app.LoadOptions{ConfigFile: configFile})
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			s.Log.Level = logLevel
		}
		l, err := app.NewLogger(cmd.ErrOrStderr(), s.Log)
		if err != nil {
			return err
		}
		settings, logger = s, l
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./calorific.yaml or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Profile id (default: active profile)")
}
