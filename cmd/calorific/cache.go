package calorific

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/cache"
	"github.com/izikbr/calorific2-app/internal/service"
)

var (
	cacheLimit    int
	cachePurgeAll bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached estimates and product lookups",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached estimates stored in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListEstimateCache(sqldb, cacheLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "KEY\tKIND\tEXPIRES\tITEMS")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", shortKey(it.Key), it.Kind, it.ExpiresAt.Local().Format(time.RFC3339), strings.Join(it.Names, ", "))
			}
			return nil
		})
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove expired cached estimates (--all for everything)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if settings.Cache.Backend == "redis" {
			if !cachePurgeAll {
				return fmt.Errorf("redis expires entries itself; use --all to clear them")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			rc, err := cache.NewRedisEstimateCache(ctx, settings.Cache.RedisURL)
			if err != nil {
				return err
			}
			defer rc.Close()
			n, err := rc.Purge(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached estimate(s)\n", n)
			return nil
		}
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.PurgeEstimateCache(sqldb, cachePurgeAll)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cached estimate(s)\n", n)
			return nil
		})
	},
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)
	cacheListCmd.Flags().IntVar(&cacheLimit, "limit", 50, "Max rows to show")
	cachePurgeCmd.Flags().BoolVar(&cachePurgeAll, "all", false, "Remove every cached estimate, not only expired ones")
}
