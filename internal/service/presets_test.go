package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/service"
)

func TestSearchPresets(t *testing.T) {
	t.Parallel()
	got := service.SearchPresets("BREAD", 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 bread presets, got %d", len(got))
	}
	for _, f := range got {
		if !strings.Contains(strings.ToLower(f.Name), "bread") {
			t.Fatalf("unexpected match %q", f.Name)
		}
	}
	if n := len(service.SearchPresets("e", 50)); n != 10 {
		t.Fatalf("expected results capped at 10, got %d", n)
	}
	if n := len(service.SearchPresets("e", 3)); n != 3 {
		t.Fatalf("expected explicit limit 3, got %d", n)
	}
	if n := len(service.SearchPresets("   ", 5)); n != 0 {
		t.Fatalf("expected empty query to match nothing, got %d", n)
	}
}

func TestPresetByName(t *testing.T) {
	t.Parallel()
	banana, err := service.PresetByName("banana")
	if err != nil {
		t.Fatalf("preset by name: %v", err)
	}
	if banana.Calories != 105 {
		t.Fatalf("unexpected banana preset: %+v", banana)
	}
	if _, err := service.PresetByName("bread"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ambiguous name to fail, got %v", err)
	}
	if _, err := service.PresetByName("pizza"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected unknown name to fail, got %v", err)
	}
}

func TestEstimateToInputScalesServings(t *testing.T) {
	t.Parallel()
	in := service.EstimateToInput(model.FoodEstimate{Name: " Banana ", Calories: 105, ProteinG: 1.3, CarbsG: 27, FatG: 0.4}, 2, model.SourcePreset)
	if in.Name != "Banana" || in.Calories != 210 || in.ProteinG != 2.6 || in.CarbsG != 54 || in.FatG != 0.8 {
		t.Fatalf("unexpected scaled input: %+v", in)
	}
	if in.SourceType != model.SourcePreset {
		t.Fatalf("expected preset source, got %s", in.SourceType)
	}
	if one := service.EstimateToInput(model.FoodEstimate{Name: "x", Calories: 10}, 0, model.SourceManual); one.Calories != 10 {
		t.Fatalf("expected zero servings to mean one, got %+v", one)
	}
}
