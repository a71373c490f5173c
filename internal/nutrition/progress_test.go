package nutrition_test

import (
	"math"
	"testing"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/nutrition"
)

func TestProgressLose(t *testing.T) {
	t.Parallel()
	got := nutrition.Progress(model.GoalLose, 90, 85, 80)
	if got.ToGoKg != 5 || math.Abs(got.Percent-50) > 1e-9 || got.ChangeKg != -5 {
		t.Fatalf("unexpected lose progress: %+v", got)
	}
	over := nutrition.Progress(model.GoalLose, 90, 78, 80)
	if over.Percent != 100 {
		t.Fatalf("expected progress clamped at 100, got %+v", over)
	}
	backwards := nutrition.Progress(model.GoalLose, 90, 93, 80)
	if backwards.Percent != 0 {
		t.Fatalf("expected progress clamped at 0, got %+v", backwards)
	}
}

func TestProgressGainAndMaintain(t *testing.T) {
	t.Parallel()
	gain := nutrition.Progress(model.GoalGain, 60, 63, 66)
	if gain.ToGoKg != 3 || math.Abs(gain.Percent-50) > 1e-9 {
		t.Fatalf("unexpected gain progress: %+v", gain)
	}
	reached := nutrition.Progress(model.GoalGain, 70, 70, 65)
	if reached.Percent != 100 {
		t.Fatalf("expected reached gain goal to be 100%%, got %+v", reached)
	}
	maintain := nutrition.Progress(model.GoalMaintain, 70, 71, 70)
	if maintain.ToGoKg != 0 || maintain.Percent != 0 || maintain.ChangeKg != 1 {
		t.Fatalf("unexpected maintain progress: %+v", maintain)
	}
}

func TestProgressWithoutTarget(t *testing.T) {
	t.Parallel()
	for _, goal := range []model.Goal{model.GoalLose, model.GoalGain} {
		got := nutrition.Progress(goal, 90, 85, 0)
		if got.ToGoKg != 0 || got.Percent != 0 || got.ChangeKg != -5 || got.TargetKg != 0 {
			t.Fatalf("%s: expected nothing to go without a target, got %+v", goal, got)
		}
	}
}

func TestBMICategoryBoundaries(t *testing.T) {
	t.Parallel()
	cases := map[float64]nutrition.BMIClass{
		18.4: nutrition.BMIUnderweight,
		18.5: nutrition.BMINormal,
		24.9: nutrition.BMINormal,
		25:   nutrition.BMIOverweight,
		30:   nutrition.BMIObese,
	}
	for bmi, want := range cases {
		if got := nutrition.BMICategory(bmi); got != want {
			t.Fatalf("bmi %.1f: expected %s, got %s", bmi, want, got)
		}
	}
}
