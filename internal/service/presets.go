package service

import (
	"math"
	"strings"

	"github.com/izikbr/calorific2-app/internal/model"
)

const maxPresetResults = 10

var commonFoods = []model.FoodEstimate{
	// dairy and eggs
	{Name: "Hard-boiled egg (large)", Calories: 78, ProteinG: 6, CarbsG: 0.6, FatG: 5},
	{Name: "Omelette (2 eggs)", Calories: 180, ProteinG: 12, CarbsG: 1, FatG: 14},
	{Name: "Cottage cheese 5% (100 g)", Calories: 98, ProteinG: 11, CarbsG: 3.4, FatG: 5},
	{Name: "Greek yogurt 2% (150 g)", Calories: 110, ProteinG: 15, CarbsG: 6, FatG: 2},
	{Name: "Milk 3% (cup, 240 ml)", Calories: 150, ProteinG: 8, CarbsG: 12, FatG: 8},
	{Name: "Yellow cheese 28% (slice)", Calories: 110, ProteinG: 7, CarbsG: 1, FatG: 9},

	// proteins
	{Name: "Chicken breast (100 g, cooked)", Calories: 165, ProteinG: 31, CarbsG: 0, FatG: 3.6},
	{Name: "Salmon (100 g, baked)", Calories: 206, ProteinG: 22, CarbsG: 0, FatG: 12},
	{Name: "Tuna in oil (drained can)", Calories: 190, ProteinG: 29, CarbsG: 0, FatG: 8},
	{Name: "Tofu (100 g)", Calories: 76, ProteinG: 8, CarbsG: 1.9, FatG: 4.8},

	// grains and carbs
	{Name: "White bread (slice)", Calories: 75, ProteinG: 2.5, CarbsG: 14, FatG: 1},
	{Name: "Whole wheat bread (slice)", Calories: 70, ProteinG: 3, CarbsG: 12, FatG: 1},
	{Name: "White rice (cup, cooked)", Calories: 205, ProteinG: 4.3, CarbsG: 45, FatG: 0.4},
	{Name: "Pasta (cup, cooked)", Calories: 220, ProteinG: 8, CarbsG: 43, FatG: 1.3},
	{Name: "Potato (medium, baked)", Calories: 160, ProteinG: 4, CarbsG: 37, FatG: 0.2},
	{Name: "Quinoa (cup, cooked)", Calories: 222, ProteinG: 8, CarbsG: 39, FatG: 3.6},

	// fruit
	{Name: "Apple (medium)", Calories: 95, ProteinG: 0.5, CarbsG: 25, FatG: 0.3},
	{Name: "Banana (medium)", Calories: 105, ProteinG: 1.3, CarbsG: 27, FatG: 0.4},
	{Name: "Orange (medium)", Calories: 62, ProteinG: 1.2, CarbsG: 15, FatG: 0.2},
	{Name: "Grapes (cup)", Calories: 104, ProteinG: 1, CarbsG: 27, FatG: 0.2},

	// vegetables
	{Name: "Cucumber (medium)", Calories: 15, ProteinG: 0.7, CarbsG: 3.6, FatG: 0.1},
	{Name: "Tomato (medium)", Calories: 22, ProteinG: 1, CarbsG: 5, FatG: 0.2},
	{Name: "Carrot (medium)", Calories: 25, ProteinG: 0.6, CarbsG: 6, FatG: 0.1},
	{Name: "Broccoli (cup, chopped)", Calories: 31, ProteinG: 2.6, CarbsG: 6, FatG: 0.3},
	{Name: "Small vegetable salad (no dressing)", Calories: 50, ProteinG: 2, CarbsG: 10, FatG: 0.5},

	// fats and nuts
	{Name: "Avocado (half)", Calories: 160, ProteinG: 2, CarbsG: 9, FatG: 15},
	{Name: "Almonds (quarter cup)", Calories: 207, ProteinG: 7.6, CarbsG: 7, FatG: 18},
	{Name: "Olive oil (tablespoon)", Calories: 120, ProteinG: 0, CarbsG: 0, FatG: 14},
}

// Presets returns a copy of the built-in common foods list.
func Presets() []model.FoodEstimate {
	out := make([]model.FoodEstimate, len(commonFoods))
	copy(out, commonFoods)
	return out
}

// SearchPresets does a case-insensitive substring match on preset names.
// An empty query returns nothing. limit <= 0 or above 10 is capped at 10.
func SearchPresets(query string, limit int) []model.FoodEstimate {
	q := normalizeName(query)
	out := make([]model.FoodEstimate, 0)
	if q == "" {
		return out
	}
	if limit <= 0 || limit > maxPresetResults {
		limit = maxPresetResults
	}
	for _, f := range commonFoods {
		if strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// PresetByName finds a preset by exact (case-insensitive) name, falling back
// to the single substring match when the name is unambiguous.
func PresetByName(name string) (model.FoodEstimate, error) {
	q := normalizeName(name)
	if q == "" {
		return model.FoodEstimate{}, invalidf("preset name is required")
	}
	var matches []model.FoodEstimate
	for _, f := range commonFoods {
		lower := strings.ToLower(f.Name)
		if lower == q {
			return f, nil
		}
		if strings.Contains(lower, q) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return model.FoodEstimate{}, invalidf("no preset matches %q", name)
	case 1:
		return matches[0], nil
	default:
		return model.FoodEstimate{}, invalidf("%q matches %d presets; be more specific", name, len(matches))
	}
}

// EstimateToInput scales an estimate by servings and turns it into a log
// input with the given source type.
func EstimateToInput(e model.FoodEstimate, servings float64, source string) FoodItemInput {
	if servings <= 0 || math.IsNaN(servings) || math.IsInf(servings, 0) {
		servings = 1
	}
	return FoodItemInput{
		Name:       strings.TrimSpace(e.Name),
		Calories:   int(math.Round(math.Max(e.Calories, 0) * servings)),
		ProteinG:   roundGrams(e.ProteinG * servings),
		CarbsG:     roundGrams(e.CarbsG * servings),
		FatG:       roundGrams(e.FatG * servings),
		SourceType: source,
	}
}

func roundGrams(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}
