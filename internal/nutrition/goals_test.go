package nutrition_test

import (
	"errors"
	"math"
	"testing"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/nutrition"
)

func baseProfile() model.Profile {
	return model.Profile{
		Sex:           model.SexMale,
		Age:           30,
		HeightCm:      180,
		WeightKg:      90,
		ActivityLevel: model.ActivityMedium,
		Goal:          model.GoalMaintain,
	}
}

func TestCalculateWorkedExample(t *testing.T) {
	t.Parallel()
	p := baseProfile()
	p.Goal = model.GoalLose
	p.TargetWeightKg = 80
	p.LoseWeightWeeks = 10

	got, err := nutrition.Calculate(p)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.BMR != 1880 {
		t.Fatalf("expected BMR 1880, got %.2f", got.BMR)
	}
	if math.Abs(got.TDEE-2914) > 1e-6 {
		t.Fatalf("expected TDEE 2914, got %.4f", got.TDEE)
	}
	if got.Calories != 1814 {
		t.Fatalf("expected 1814 kcal, got %d", got.Calories)
	}
	if got.ProteinG != 136 || got.CarbsG != 181 || got.FatG != 60 {
		t.Fatalf("unexpected macros: %+v", got)
	}
	if got.Floored {
		t.Fatalf("did not expect the floor to apply: %+v", got)
	}
}

func TestCalculateFemaleUsesLowerConstant(t *testing.T) {
	t.Parallel()
	p := baseProfile()
	p.Sex = model.SexFemale
	p.WeightKg = 60
	p.HeightCm = 165
	p.Age = 28
	p.ActivityLevel = model.ActivityLow

	got, err := nutrition.Calculate(p)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// 600 + 1031.25 - 140 - 161
	if math.Abs(got.BMR-1330.25) > 1e-9 {
		t.Fatalf("expected BMR 1330.25, got %.4f", got.BMR)
	}
	if got.Calories != int(math.Round(1330.25*1.375)) {
		t.Fatalf("expected maintain calories %d, got %d", int(math.Round(1330.25*1.375)), got.Calories)
	}
}

func TestMaintainEqualsTDEE(t *testing.T) {
	t.Parallel()
	for _, level := range []model.ActivityLevel{model.ActivityLow, model.ActivityMedium, model.ActivityHigh} {
		p := baseProfile()
		p.ActivityLevel = level
		got, err := nutrition.Calculate(p)
		if err != nil {
			t.Fatalf("calculate %s: %v", level, err)
		}
		factor, _ := nutrition.ActivityFactor(level)
		want := int(math.Round(nutrition.BMR(p.Sex, p.WeightKg, p.HeightCm, p.Age) * factor))
		if got.Calories != want {
			t.Fatalf("%s: expected %d kcal, got %d", level, want, got.Calories)
		}
		if got.DailyAdjustment != 0 {
			t.Fatalf("%s: expected no adjustment, got %.2f", level, got.DailyAdjustment)
		}
	}
}

func TestGainAndLoseWithoutTimelineUseFixedAdjustments(t *testing.T) {
	t.Parallel()
	maintain, err := nutrition.Calculate(baseProfile())
	if err != nil {
		t.Fatalf("calculate maintain: %v", err)
	}

	gain := baseProfile()
	gain.Goal = model.GoalGain
	g, err := nutrition.Calculate(gain)
	if err != nil {
		t.Fatalf("calculate gain: %v", err)
	}
	if g.Calories != maintain.Calories+400 {
		t.Fatalf("expected gain %d, got %d", maintain.Calories+400, g.Calories)
	}

	lose := baseProfile()
	lose.Goal = model.GoalLose
	l, err := nutrition.Calculate(lose)
	if err != nil {
		t.Fatalf("calculate lose: %v", err)
	}
	if l.Calories != maintain.Calories-400 {
		t.Fatalf("expected lose %d, got %d", maintain.Calories-400, l.Calories)
	}

	// Already at target: the timeline is ignored.
	lose.TargetWeightKg = 95
	lose.LoseWeightWeeks = 4
	l2, err := nutrition.Calculate(lose)
	if err != nil {
		t.Fatalf("calculate lose at target: %v", err)
	}
	if l2.Calories != maintain.Calories-400 {
		t.Fatalf("expected default deficit when at target, got %d", l2.Calories)
	}
}

func TestLoseTimelineIsMonotonicInWeeks(t *testing.T) {
	t.Parallel()
	p := baseProfile()
	p.Goal = model.GoalLose
	p.TargetWeightKg = 70

	prev := 0
	for weeks := 1; weeks <= 300; weeks++ {
		p.LoseWeightWeeks = weeks
		got, err := nutrition.Calculate(p)
		if err != nil {
			t.Fatalf("weeks=%d: %v", weeks, err)
		}
		if got.Calories < prev {
			t.Fatalf("weeks=%d: target decreased from %d to %d", weeks, prev, got.Calories)
		}
		prev = got.Calories
	}

	p.LoseWeightWeeks = 100000
	far, err := nutrition.Calculate(p)
	if err != nil {
		t.Fatalf("far timeline: %v", err)
	}
	if math.Abs(float64(far.Calories)-far.TDEE) > 1 {
		t.Fatalf("expected target to approach TDEE %.1f, got %d", far.TDEE, far.Calories)
	}
}

func TestAggressiveTimelineIsFloored(t *testing.T) {
	t.Parallel()
	p := baseProfile()
	p.Goal = model.GoalLose
	p.TargetWeightKg = 60
	p.LoseWeightWeeks = 1

	got, err := nutrition.Calculate(p)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.Calories != nutrition.MinDailyCalories || !got.Floored {
		t.Fatalf("expected floored target %d, got %+v", nutrition.MinDailyCalories, got)
	}
}

func TestTargetsNeverBelowFloor(t *testing.T) {
	t.Parallel()
	sexes := []model.Sex{model.SexMale, model.SexFemale}
	goals := []model.Goal{model.GoalLose, model.GoalMaintain, model.GoalGain}
	levels := []model.ActivityLevel{model.ActivityLow, model.ActivityMedium, model.ActivityHigh}
	for _, sex := range sexes {
		for _, goal := range goals {
			for _, level := range levels {
				for _, weight := range []float64{35, 55, 80, 140} {
					for _, weeks := range []int{0, 1, 4, 52} {
						p := model.Profile{
							Sex: sex, Age: 70, HeightCm: 145, WeightKg: weight,
							TargetWeightKg: 30, ActivityLevel: level, Goal: goal, LoseWeightWeeks: weeks,
						}
						got, err := nutrition.Calculate(p)
						if err != nil {
							t.Fatalf("calculate %+v: %v", p, err)
						}
						if got.Calories < nutrition.MinDailyCalories {
							t.Fatalf("target %d below floor for %+v", got.Calories, p)
						}
					}
				}
			}
		}
	}
}

func TestMacrosSumToCalories(t *testing.T) {
	t.Parallel()
	for kcal := nutrition.MinDailyCalories; kcal <= 4500; kcal += 7 {
		p, c, f := nutrition.Macros(kcal)
		sum := float64(p*4 + c*4 + f*9)
		if math.Abs(sum-float64(kcal)) > 8.5 {
			t.Fatalf("kcal=%d: macros p=%d c=%d f=%d sum to %.0f", kcal, p, c, f, sum)
		}
	}
}

func TestBMIReference(t *testing.T) {
	t.Parallel()
	if got := nutrition.BMI(70, 175); got != 22.9 {
		t.Fatalf("expected BMI 22.9, got %.2f", got)
	}
	p := baseProfile()
	p.WeightKg = 70
	p.HeightCm = 175
	got, err := nutrition.Calculate(p)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.BMI != 22.9 {
		t.Fatalf("expected targets BMI 22.9, got %.2f", got.BMI)
	}
	if nutrition.BMICategory(got.BMI) != nutrition.BMINormal {
		t.Fatalf("expected normal BMI category, got %s", nutrition.BMICategory(got.BMI))
	}
}

func TestCalculateRejectsInvalidProfiles(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*model.Profile){
		"zero height":      func(p *model.Profile) { p.HeightCm = 0 },
		"negative height":  func(p *model.Profile) { p.HeightCm = -170 },
		"nan weight":       func(p *model.Profile) { p.WeightKg = math.NaN() },
		"zero age":         func(p *model.Profile) { p.Age = 0 },
		"negative weeks":   func(p *model.Profile) { p.LoseWeightWeeks = -2 },
		"missing activity": func(p *model.Profile) { p.ActivityLevel = "" },
		"unknown goal":     func(p *model.Profile) { p.Goal = "bulk" },
		"unknown sex":      func(p *model.Profile) { p.Sex = "x" },
		"huge weight":      func(p *model.Profile) { p.WeightKg = 1e308 },
		"huge height":      func(p *model.Profile) { p.HeightCm = 1e308 },
		"inf target":       func(p *model.Profile) { p.TargetWeightKg = math.Inf(1) },
		"huge target":      func(p *model.Profile) { p.TargetWeightKg = 5000 },
		"ancient age":      func(p *model.Profile) { p.Age = 151 },
		"endless weeks":    func(p *model.Profile) { p.LoseWeightWeeks = 521 },
	}
	for name, mutate := range cases {
		p := baseProfile()
		mutate(&p)
		got, err := nutrition.Calculate(p)
		if !errors.Is(err, nutrition.ErrInvalidProfile) {
			t.Fatalf("%s: expected ErrInvalidProfile, got %v (targets %+v)", name, err, got)
		}
	}
}

func TestCalculateAcceptsUpperBounds(t *testing.T) {
	t.Parallel()
	p := baseProfile()
	p.HeightCm = nutrition.MaxHeightCm
	p.WeightKg = nutrition.MaxWeightKg
	p.Age = nutrition.MaxAge
	got, err := nutrition.Calculate(p)
	if err != nil {
		t.Fatalf("calculate at bounds: %v", err)
	}
	if math.IsInf(got.TDEE, 0) || math.IsNaN(got.BMR) || got.Calories <= nutrition.MinDailyCalories {
		t.Fatalf("unexpected targets at bounds: %+v", got)
	}
}
