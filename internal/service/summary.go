package service

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/nutrition"
)

const defaultTrendDays = 7

type DaySummary struct {
	ProfileID         string             `json:"profile_id"`
	Date              string             `json:"date"`
	Items             int                `json:"items"`
	Calories          int                `json:"calories"`
	ProteinG          float64            `json:"protein_g"`
	CarbsG            float64            `json:"carbs_g"`
	FatG              float64            `json:"fat_g"`
	Targets           nutrition.Targets  `json:"targets"`
	RemainingCalories int                `json:"remaining_calories"`
	RemainingProteinG float64            `json:"remaining_protein_g"`
	RemainingCarbsG   float64            `json:"remaining_carbs_g"`
	RemainingFatG     float64            `json:"remaining_fat_g"`
	BMICategory       nutrition.BMIClass `json:"bmi_category"`
	Foods             []model.FoodItem   `json:"foods"`
}

// DailySummary totals the food logged for date and sets it against the
// profile's current targets. Remaining values go negative when over.
func DailySummary(db *sql.DB, profileID, date string) (DaySummary, error) {
	date, err := normalizeDate(date)
	if err != nil {
		return DaySummary{}, err
	}
	_, targets, err := ProfileTargets(db, profileID)
	if err != nil {
		return DaySummary{}, err
	}
	foods, err := ListFoodForDate(db, profileID, date)
	if err != nil {
		return DaySummary{}, err
	}

	s := DaySummary{
		ProfileID:   strings.TrimSpace(profileID),
		Date:        date,
		Items:       len(foods),
		Targets:     targets,
		BMICategory: nutrition.BMICategory(targets.BMI),
		Foods:       foods,
	}
	for _, f := range foods {
		s.Calories += f.Calories
		s.ProteinG += f.ProteinG
		s.CarbsG += f.CarbsG
		s.FatG += f.FatG
	}
	s.ProteinG = roundGrams(s.ProteinG)
	s.CarbsG = roundGrams(s.CarbsG)
	s.FatG = roundGrams(s.FatG)
	s.RemainingCalories = targets.Calories - s.Calories
	s.RemainingProteinG = math.Round((float64(targets.ProteinG)-s.ProteinG)*10) / 10
	s.RemainingCarbsG = math.Round((float64(targets.CarbsG)-s.CarbsG)*10) / 10
	s.RemainingFatG = math.Round((float64(targets.FatG)-s.FatG)*10) / 10
	return s, nil
}

// TrendPoint is one chart row; either side may be missing for a date.
type TrendPoint struct {
	Date     string   `json:"date"`
	Calories *int     `json:"calories,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
}

// Trend merges calories per day with weight entries between from and to
// inclusive, sorted by date. Empty bounds default to the last seven days.
func Trend(db *sql.DB, profileID, from, to string) ([]TrendPoint, error) {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return nil, err
	}
	from, to, err = trendRange(from, to)
	if err != nil {
		return nil, err
	}
	if err := ensureProfileExists(db, profileID); err != nil {
		return nil, err
	}
	cals, err := caloriesByDate(db, profileID, from, to)
	if err != nil {
		return nil, err
	}
	weights, err := listWeightsBetween(db, profileID, from, to)
	if err != nil {
		return nil, err
	}

	points := make([]TrendPoint, 0, len(cals)+len(weights))
	i, j := 0, 0
	for i < len(cals) || j < len(weights) {
		switch {
		case j >= len(weights) || (i < len(cals) && cals[i].Date < weights[j].Date):
			c := cals[i].Calories
			points = append(points, TrendPoint{Date: cals[i].Date, Calories: &c})
			i++
		case i >= len(cals) || weights[j].Date < cals[i].Date:
			w := weights[j].WeightKg
			points = append(points, TrendPoint{Date: weights[j].Date, WeightKg: &w})
			j++
		default:
			c := cals[i].Calories
			w := weights[j].WeightKg
			points = append(points, TrendPoint{Date: cals[i].Date, Calories: &c, WeightKg: &w})
			i++
			j++
		}
	}
	return points, nil
}

func trendRange(from, to string) (string, string, error) {
	var err error
	if strings.TrimSpace(to) == "" {
		to = Today()
	}
	if to, err = normalizeDate(to); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(from) == "" {
		end, _ := time.ParseInLocation(dateLayout, to, time.Local)
		from = end.AddDate(0, 0, -(defaultTrendDays - 1)).Format(dateLayout)
	}
	if from, err = normalizeDate(from); err != nil {
		return "", "", err
	}
	if from > to {
		return "", "", invalidf("from date %s is after to date %s", from, to)
	}
	return from, to, nil
}

type ProgressReport struct {
	ProfileID string                   `json:"profile_id"`
	Goal      model.Goal               `json:"goal"`
	Progress  nutrition.WeightProgress `json:"progress"`
	BMI       float64                  `json:"bmi"`
	Category  nutrition.BMIClass       `json:"bmi_category"`
	Entries   int                      `json:"entries"`
}

// WeightProgressFor measures progress from the earliest logged weight (or
// the profile weight when nothing is logged) to the profile's current weight.
func WeightProgressFor(db *sql.DB, profileID string) (ProgressReport, error) {
	p, err := ProfileByID(db, profileID)
	if err != nil {
		return ProgressReport{}, err
	}
	weights, err := ListWeights(db, p.ID)
	if err != nil {
		return ProgressReport{}, err
	}
	start := p.WeightKg
	if len(weights) > 0 {
		start = weights[0].WeightKg
	}
	bmi := nutrition.BMI(p.WeightKg, p.HeightCm)
	return ProgressReport{
		ProfileID: p.ID,
		Goal:      p.Goal,
		Progress:  nutrition.Progress(p.Goal, start, p.WeightKg, p.TargetWeightKg),
		BMI:       bmi,
		Category:  nutrition.BMICategory(bmi),
		Entries:   len(weights),
	}, nil
}
