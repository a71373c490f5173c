package calorific

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/db"
)

// Set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version/build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "calorific %s (%s) schema v%d %s/%s\n", Version, Commit, db.LatestVersion(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
