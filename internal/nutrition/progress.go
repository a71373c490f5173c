package nutrition

import (
	"math"

	"github.com/izikbr/calorific2-app/internal/model"
)

type BMIClass string

const (
	BMIUnderweight BMIClass = "underweight"
	BMINormal      BMIClass = "normal"
	BMIOverweight  BMIClass = "overweight"
	BMIObese       BMIClass = "obese"
)

func BMICategory(bmi float64) BMIClass {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

type WeightProgress struct {
	StartKg   float64 `json:"start_kg"`
	CurrentKg float64 `json:"current_kg"`
	TargetKg  float64 `json:"target_kg"`
	ToGoKg    float64 `json:"to_go_kg"`
	Percent   float64 `json:"percent"`
	ChangeKg  float64 `json:"change_kg"`
}

// Progress measures how far current has moved from start toward target.
// Percent is clamped to [0, 100]. Maintain, or a goal without a target
// weight, reports zero to go.
func Progress(goal model.Goal, start, current, target float64) WeightProgress {
	out := WeightProgress{
		StartKg:   start,
		CurrentKg: current,
		TargetKg:  target,
		ChangeKg:  current - start,
	}
	if target <= 0 {
		return out
	}
	var total, done float64
	switch goal {
	case model.GoalLose:
		out.ToGoKg = current - target
		total = start - target
		done = start - current
	case model.GoalGain:
		out.ToGoKg = target - current
		total = target - start
		done = current - start
	default:
		return out
	}
	switch {
	case total > 0:
		out.Percent = done / total * 100
	case out.ToGoKg <= 0:
		out.Percent = 100
	}
	out.Percent = math.Max(0, math.Min(100, out.Percent))
	return out
}
