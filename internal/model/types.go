package model

import (
	"fmt"
	"strings"
	"time"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

const (
	SourceManual  = "manual"
	SourceAIText  = "ai_text"
	SourceAIImage = "ai_image"
	SourcePreset  = "preset"
	SourceImport  = "import"
	SourceBarcode = "barcode"
)

func ParseSex(value string) (Sex, error) {
	switch s := Sex(strings.ToLower(strings.TrimSpace(value))); s {
	case SexMale, SexFemale:
		return s, nil
	case "":
		return "", fmt.Errorf("sex is required (male or female)")
	default:
		return "", fmt.Errorf("invalid sex %q (use male or female)", value)
	}
}

func ParseActivityLevel(value string) (ActivityLevel, error) {
	switch a := ActivityLevel(strings.ToLower(strings.TrimSpace(value))); a {
	case ActivityLow, ActivityMedium, ActivityHigh:
		return a, nil
	case "":
		return "", fmt.Errorf("activity level is required (low, medium or high)")
	default:
		return "", fmt.Errorf("invalid activity level %q (use low, medium or high)", value)
	}
}

func ParseGoal(value string) (Goal, error) {
	switch g := Goal(strings.ToLower(strings.TrimSpace(value))); g {
	case GoalLose, GoalMaintain, GoalGain:
		return g, nil
	case "":
		return "", fmt.Errorf("goal is required (lose, maintain or gain)")
	default:
		return "", fmt.Errorf("invalid goal %q (use lose, maintain or gain)", value)
	}
}

type Profile struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Avatar          string        `json:"avatar,omitempty"`
	Sex             Sex           `json:"sex"`
	Age             int           `json:"age"`
	HeightCm        float64       `json:"height_cm"`
	WeightKg        float64       `json:"weight_kg"`
	TargetWeightKg  float64       `json:"target_weight_kg,omitempty"`
	ActivityLevel   ActivityLevel `json:"activity_level"`
	Goal            Goal          `json:"goal"`
	LoseWeightWeeks int           `json:"lose_weight_weeks,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type FoodItem struct {
	ID         string    `json:"id"`
	ProfileID  string    `json:"profile_id"`
	Name       string    `json:"name"`
	Calories   int       `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	LogDate    string    `json:"log_date"`
	ConsumedAt time.Time `json:"consumed_at"`
	SourceType string    `json:"source_type"`
}

type WeightEntry struct {
	ProfileID string  `json:"profile_id"`
	Date      string  `json:"date"`
	WeightKg  float64 `json:"weight_kg"`
}

// FoodEstimate is a nutrition record produced by an estimator or the preset
// list, before it is assigned an id and a log date.
type FoodEstimate struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein"`
	CarbsG   float64 `json:"carbs"`
	FatG     float64 `json:"fat"`
}
