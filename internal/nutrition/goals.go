// Package nutrition turns body metrics into daily calorie and macronutrient
// targets. Everything here is pure: no storage, no clock, no I/O.
package nutrition

import (
	"errors"
	"fmt"
	"math"

	"github.com/izikbr/calorific2-app/internal/model"
)

const (
	// KcalPerKg is the energy density used to turn a weight delta into a
	// total calorie deficit.
	KcalPerKg = 7700.0
	// MinDailyCalories is the lowest target ever recommended.
	MinDailyCalories = 1200
	// DefaultDeficit applies to the lose goal when no timeline is set.
	DefaultDeficit = 400.0
	// DefaultSurplus applies to the gain goal.
	DefaultSurplus = 400.0

	proteinShare = 0.30
	carbsShare   = 0.40
	fatShare     = 0.30

	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0

	MaxHeightCm = 300.0
	MaxWeightKg = 1000.0
	MaxAge      = 150
	MaxWeeks    = 520
)

var ErrInvalidProfile = errors.New("invalid profile")

var activityFactors = map[model.ActivityLevel]float64{
	model.ActivityLow:    1.375,
	model.ActivityMedium: 1.55,
	model.ActivityHigh:   1.725,
}

type Targets struct {
	BMR             float64 `json:"bmr"`
	TDEE            float64 `json:"tdee"`
	DailyAdjustment float64 `json:"daily_adjustment"`
	Calories        int     `json:"calories"`
	ProteinG        int     `json:"protein_g"`
	CarbsG          int     `json:"carbs_g"`
	FatG            int     `json:"fat_g"`
	BMI             float64 `json:"bmi"`
	Floored         bool    `json:"floored,omitempty"`
}

// ActivityFactor returns the TDEE multiplier for a level.
func ActivityFactor(level model.ActivityLevel) (float64, bool) {
	f, ok := activityFactors[level]
	return f, ok
}

// Validate reports the first field that makes p unusable for Calculate.
// Returned errors wrap ErrInvalidProfile.
func Validate(p model.Profile) error {
	switch {
	case isBad(p.HeightCm) || p.HeightCm <= 0 || p.HeightCm > MaxHeightCm:
		return fmt.Errorf("%w: height must be > 0 and <= %.0f cm", ErrInvalidProfile, MaxHeightCm)
	case isBad(p.WeightKg) || p.WeightKg <= 0 || p.WeightKg > MaxWeightKg:
		return fmt.Errorf("%w: weight must be > 0 and <= %.0f kg", ErrInvalidProfile, MaxWeightKg)
	case p.Age <= 0 || p.Age > MaxAge:
		return fmt.Errorf("%w: age must be > 0 and <= %d", ErrInvalidProfile, MaxAge)
	case isBad(p.TargetWeightKg) || p.TargetWeightKg < 0 || p.TargetWeightKg > MaxWeightKg:
		return fmt.Errorf("%w: target weight must be >= 0 and <= %.0f kg", ErrInvalidProfile, MaxWeightKg)
	case p.LoseWeightWeeks < 0 || p.LoseWeightWeeks > MaxWeeks:
		return fmt.Errorf("%w: target duration must be 0-%d weeks", ErrInvalidProfile, MaxWeeks)
	}
	if p.Sex != model.SexMale && p.Sex != model.SexFemale {
		return fmt.Errorf("%w: unknown sex %q", ErrInvalidProfile, p.Sex)
	}
	if _, ok := activityFactors[p.ActivityLevel]; !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidProfile, p.ActivityLevel)
	}
	switch p.Goal {
	case model.GoalLose, model.GoalMaintain, model.GoalGain:
	default:
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, p.Goal)
	}
	return nil
}

// BMR uses the Mifflin-St Jeor equation.
func BMR(sex model.Sex, weightKg, heightCm float64, age int) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == model.SexMale {
		return base + 5
	}
	return base - 161
}

func BMI(weightKg, heightCm float64) float64 {
	m := heightCm / 100
	return round1(weightKg / (m * m))
}

func Calculate(p model.Profile) (Targets, error) {
	if err := Validate(p); err != nil {
		return Targets{}, err
	}
	bmr := BMR(p.Sex, p.WeightKg, p.HeightCm, p.Age)
	tdee := bmr * activityFactors[p.ActivityLevel]
	adj := adjustment(p)
	if isBad(bmr) || isBad(tdee) || isBad(tdee+adj) {
		return Targets{}, fmt.Errorf("%w: metrics produce a non-finite energy target", ErrInvalidProfile)
	}

	out := Targets{
		BMR:             bmr,
		TDEE:            tdee,
		DailyAdjustment: adj,
		Calories:        int(math.Round(tdee + adj)),
		BMI:             BMI(p.WeightKg, p.HeightCm),
	}
	if out.Calories < MinDailyCalories {
		out.Calories = MinDailyCalories
		out.Floored = true
	}
	out.ProteinG, out.CarbsG, out.FatG = Macros(out.Calories)
	return out, nil
}

// Macros splits a calorie target 30/40/30 into whole grams.
func Macros(calories int) (protein, carbs, fat int) {
	c := float64(calories)
	protein = int(math.Round(c * proteinShare / kcalPerGramProtein))
	carbs = int(math.Round(c * carbsShare / kcalPerGramCarbs))
	fat = int(math.Round(c * fatShare / kcalPerGramFat))
	return protein, carbs, fat
}

func adjustment(p model.Profile) float64 {
	switch p.Goal {
	case model.GoalGain:
		return DefaultSurplus
	case model.GoalLose:
		toLose := p.WeightKg - p.TargetWeightKg
		if p.TargetWeightKg > 0 && p.LoseWeightWeeks > 0 && toLose > 0 {
			return -(toLose * KcalPerKg) / float64(p.LoseWeightWeeks*7)
		}
		return -DefaultDeficit
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
