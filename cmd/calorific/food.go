package calorific

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/provider/openfoodfacts"
	"github.com/izikbr/calorific2-app/internal/service"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Log and manage food items",
}

var (
	foodName     string
	foodCalories int
	foodProtein  float64
	foodCarbs    float64
	foodFat      float64
	foodDate     string
	foodTime     string
	foodServings float64
	foodLimit    int
	estText      string
	estImage     string
	estLog       bool
)

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food item manually",
	RunE: func(cmd *cobra.Command, args []string) error {
		consumed, err := parseConsumedAt(foodDate, foodTime)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			ids, err := service.AppendFoodItems(sqldb, id, foodDate, []service.FoodItemInput{{
				Name:       foodName,
				Calories:   foodCalories,
				ProteinG:   foodProtein,
				CarbsG:     foodCarbs,
				FatG:       foodFat,
				ConsumedAt: consumed,
				SourceType: model.SourceManual,
			}})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%d kcal) as %s\n", strings.TrimSpace(foodName), foodCalories, ids[0])
			return nil
		})
	},
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food logged for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			items, err := service.ListFoodForDate(sqldb, id, foodDate)
			if err != nil {
				return err
			}
			printFoodTable(cmd, items)
			return nil
		})
	},
}

var foodUpdateCmd = &cobra.Command{
	Use:   "update <item-id>",
	Short: "Edit a logged food item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		if !f.Changed("name") && !f.Changed("calories") && !f.Changed("protein") && !f.Changed("carbs") && !f.Changed("fat") {
			return fmt.Errorf("set at least one of --name, --calories, --protein, --carbs, --fat")
		}
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			cur, err := service.FoodItemByID(sqldb, id, args[0])
			if err != nil {
				return err
			}
			in := service.UpdateFoodItemInput{
				ID:       cur.ID,
				Name:     cur.Name,
				Calories: cur.Calories,
				ProteinG: cur.ProteinG,
				CarbsG:   cur.CarbsG,
				FatG:     cur.FatG,
			}
			if f.Changed("name") {
				in.Name = foodName
			}
			if f.Changed("calories") {
				in.Calories = foodCalories
			}
			if f.Changed("protein") {
				in.ProteinG = foodProtein
			}
			if f.Changed("carbs") {
				in.CarbsG = foodCarbs
			}
			if f.Changed("fat") {
				in.FatG = foodFat
			}
			if err := service.UpdateFoodItem(sqldb, id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated food item %s\n", cur.ID)
			return nil
		})
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Remove a logged food item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			if err := service.RemoveFoodItem(sqldb, id, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food item %s\n", args[0])
			return nil
		})
	},
}

var foodQuickCmd = &cobra.Command{
	Use:   "quick <preset>",
	Short: "Log a common food from the preset list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, err := service.PresetByName(strings.Join(args, " "))
		if err != nil {
			return err
		}
		in := service.EstimateToInput(preset, foodServings, model.SourcePreset)
		return withDB(func(sqldb *sql.DB) error {
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			if _, err := service.AppendFoodItems(sqldb, id, foodDate, []service.FoodItemInput{in}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%d kcal)\n", in.Name, in.Calories)
			return nil
		})
	},
}

var foodPresetsCmd = &cobra.Command{
	Use:   "presets [query]",
	Short: "List or search common foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		items := service.Presets()
		if q := strings.Join(args, " "); strings.TrimSpace(q) != "" {
			items = service.SearchPresets(q, foodLimit)
		}
		printEstimates(cmd, items)
		return nil
	},
}

var foodEstimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate nutrition from a description or a meal photo",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (estText == "") == (estImage == "") {
			return fmt.Errorf("set exactly one of --text or --image")
		}
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, closeCache, err := estimateConfig(ctx, sqldb)
			if err != nil {
				return err
			}
			defer closeCache()

			var res service.EstimateResult
			if estText != "" {
				res, err = service.EstimateText(ctx, cfg, estText)
			} else {
				var data []byte
				data, err = os.ReadFile(estImage)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				res, err = service.EstimateImage(ctx, cfg, data, imageMIME(estImage, data))
			}
			if errors.Is(err, service.ErrEstimateUnavailable) {
				logger.WithError(err).Warn("estimate failed")
				fmt.Fprintln(cmd.OutOrStdout(), "estimation failed, try again")
				return nil
			}
			if err != nil {
				return err
			}
			if len(res.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No food recognized")
				return nil
			}
			printEstimates(cmd, res.Items)
			if res.FromCache {
				fmt.Fprintln(cmd.OutOrStdout(), "(cached)")
			}
			if !estLog {
				return nil
			}
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			ids, err := service.AppendFoodItems(sqldb, id, foodDate, service.EstimatesToInputs(res.Kind, res.Items))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d item(s)\n", len(ids))
			return nil
		})
	},
}

var foodBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Look up a packaged product by barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, closeCache := barcodeConfig(ctx, sqldb)
			defer closeCache()

			res, err := service.LookupBarcode(ctx, cfg, args[0])
			if errors.Is(err, service.ErrEstimateUnavailable) {
				logger.WithError(err).Warn("barcode lookup failed")
				fmt.Fprintln(cmd.OutOrStdout(), "lookup failed, try again")
				return nil
			}
			if errors.Is(err, service.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No product found for %s\n", strings.TrimSpace(args[0]))
				return nil
			}
			if err != nil {
				return err
			}
			printEstimates(cmd, res.Items)
			if res.FromCache {
				fmt.Fprintln(cmd.OutOrStdout(), "(cached)")
			}
			if !estLog {
				return nil
			}
			id, err := currentProfile(sqldb)
			if err != nil {
				return err
			}
			in := service.EstimateToInput(res.Items[0], foodServings, model.SourceBarcode)
			if _, err := service.AppendFoodItems(sqldb, id, foodDate, []service.FoodItemInput{in}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%d kcal)\n", in.Name, in.Calories)
			return nil
		})
	},
}

var foodSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search packaged products by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		// Search results are not cached, so no database is needed.
		cfg := service.BarcodeConfig{Lookup: &openfoodfacts.Client{
			BaseURL:    settings.Products.BaseURL,
			HTTPClient: &http.Client{Timeout: settings.Products.Timeout},
		}, Log: logger}
		items, err := service.SearchProducts(ctx, cfg, strings.Join(args, " "), foodLimit)
		if errors.Is(err, service.ErrEstimateUnavailable) {
			logger.WithError(err).Warn("product search failed")
			fmt.Fprintln(cmd.OutOrStdout(), "search failed, try again")
			return nil
		}
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No products found")
			return nil
		}
		printEstimates(cmd, items)
		return nil
	},
}

func printEstimates(cmd *cobra.Command, items []model.FoodEstimate) {
	fmt.Fprintln(cmd.OutOrStdout(), "NAME\tKCAL\tP\tC\tF")
	for _, it := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.0f\t%.1f\t%.1f\t%.1f\n", it.Name, it.Calories, it.ProteinG, it.CarbsG, it.FatG)
	}
}

func imageMIME(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	}
	return http.DetectContentType(data)
}

// parseConsumedAt returns the zero time when --time is unset so the log
// records the current time.
func parseConsumedAt(date, timeStr string) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return time.Time{}, nil
	}
	date = strings.TrimSpace(date)
	if date == "" {
		date = service.Today()
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func printFoodTable(cmd *cobra.Command, items []model.FoodItem) {
	fmt.Fprintln(cmd.OutOrStdout(), "ID\tTIME\tNAME\tKCAL\tP\tC\tF\tSOURCE")
	for _, it := range items {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%s\n",
			it.ID, it.ConsumedAt.Local().Format("15:04"), it.Name, it.Calories, it.ProteinG, it.CarbsG, it.FatG, it.SourceType)
	}
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAddCmd, foodListCmd, foodUpdateCmd, foodDeleteCmd, foodQuickCmd, foodPresetsCmd, foodEstimateCmd, foodBarcodeCmd, foodSearchCmd)

	for _, c := range []*cobra.Command{foodAddCmd, foodUpdateCmd} {
		c.Flags().StringVar(&foodName, "name", "", "Food name")
		c.Flags().IntVar(&foodCalories, "calories", 0, "Calories (kcal)")
		c.Flags().Float64Var(&foodProtein, "protein", 0, "Protein grams")
		c.Flags().Float64Var(&foodCarbs, "carbs", 0, "Carbs grams")
		c.Flags().Float64Var(&foodFat, "fat", 0, "Fat grams")
	}
	for _, c := range []*cobra.Command{foodAddCmd, foodListCmd, foodQuickCmd, foodEstimateCmd, foodBarcodeCmd} {
		c.Flags().StringVar(&foodDate, "date", "", "Log date YYYY-MM-DD (default today)")
	}
	foodAddCmd.Flags().StringVar(&foodTime, "time", "", "Time eaten HH:MM (default now)")
	for _, c := range []*cobra.Command{foodQuickCmd, foodBarcodeCmd} {
		c.Flags().Float64Var(&foodServings, "servings", 1, "Number of servings")
	}
	for _, c := range []*cobra.Command{foodPresetsCmd, foodSearchCmd} {
		c.Flags().IntVar(&foodLimit, "limit", 10, "Max search results")
	}
	foodEstimateCmd.Flags().StringVar(&estText, "text", "", "Meal description")
	foodEstimateCmd.Flags().StringVar(&estImage, "image", "", "Path to a meal photo")
	foodEstimateCmd.Flags().BoolVar(&estLog, "log", false, "Log the estimated items")
	foodBarcodeCmd.Flags().BoolVar(&estLog, "log", false, "Log the product")
}
