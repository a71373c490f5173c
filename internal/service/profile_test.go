package service_test

import (
	"errors"
	"testing"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/nutrition"
	"github.com/izikbr/calorific2-app/internal/service"
)

func TestProfileCreateGetList(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	id := mustCreateProfile(t, sqldb, sampleProfile())
	p, err := service.ProfileByID(sqldb, id)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Name != "Dana" || p.Sex != model.SexMale || p.Goal != model.GoalLose || p.LoseWeightWeeks != 10 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	second := sampleProfile()
	second.Name = "Noa"
	second.Sex = "female"
	mustCreateProfile(t, sqldb, second)

	profiles, err := service.ListProfiles(sqldb)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
}

func TestProfileCreateRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	cases := map[string]func(*service.ProfileInput){
		"missing name":   func(in *service.ProfileInput) { in.Name = "  " },
		"unknown sex":    func(in *service.ProfileInput) { in.Sex = "other" },
		"missing goal":   func(in *service.ProfileInput) { in.Goal = "" },
		"bad activity":   func(in *service.ProfileInput) { in.ActivityLevel = "extreme" },
		"zero weight":    func(in *service.ProfileInput) { in.Weight = 0 },
		"bad unit":       func(in *service.ProfileInput) { in.WeightUnit = "stone" },
		"negative weeks": func(in *service.ProfileInput) { in.LoseWeightWeeks = -1 },
	}
	for name, mutate := range cases {
		in := sampleProfile()
		mutate(&in)
		_, err := service.CreateProfile(sqldb, in)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !errors.Is(err, service.ErrInvalidInput) && !errors.Is(err, nutrition.ErrInvalidProfile) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	zeroHeight := sampleProfile()
	zeroHeight.HeightCm = 0
	if _, err := service.CreateProfile(sqldb, zeroHeight); !errors.Is(err, nutrition.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile for zero height, got %v", err)
	}
}

func TestProfileCreateConvertsPounds(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	in := sampleProfile()
	in.Weight = 198.416
	in.TargetWeight = 176.37
	in.WeightUnit = "lb"
	id := mustCreateProfile(t, sqldb, in)
	p, err := service.ProfileByID(sqldb, id)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.WeightKg < 89.9 || p.WeightKg > 90.1 {
		t.Fatalf("expected ~90kg, got %.3f", p.WeightKg)
	}
	if p.TargetWeightKg < 79.9 || p.TargetWeightKg > 80.1 {
		t.Fatalf("expected ~80kg target, got %.3f", p.TargetWeightKg)
	}
}

func TestProfileUpdatePatchesFields(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	id := mustCreateProfile(t, sqldb, sampleProfile())

	updated, err := service.UpdateProfile(sqldb, id, service.ProfilePatch{
		Goal:            ptr("maintain"),
		LoseWeightWeeks: ptr(0),
		Name:            ptr("Dana R"),
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Goal != model.GoalMaintain || updated.Name != "Dana R" || updated.LoseWeightWeeks != 0 {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}
	if updated.WeightKg != 90 || updated.Age != 30 {
		t.Fatalf("expected untouched fields to survive, got %+v", updated)
	}

	if _, err := service.UpdateProfile(sqldb, id, service.ProfilePatch{Age: ptr(0)}); !errors.Is(err, nutrition.ErrInvalidProfile) {
		t.Fatalf("expected invalid age to be rejected, got %v", err)
	}
	if _, err := service.UpdateProfile(sqldb, id, service.ProfilePatch{}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected empty patch to be rejected, got %v", err)
	}
	if _, err := service.UpdateProfile(sqldb, "missing", service.ProfilePatch{Age: ptr(40)}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileDeleteCascadesAndClearsActive(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	id := mustCreateProfile(t, sqldb, sampleProfile())

	if _, err := service.AppendFoodItems(sqldb, id, "2026-03-01", []service.FoodItemInput{{Name: "Toast", Calories: 150}}); err != nil {
		t.Fatalf("append food: %v", err)
	}
	if _, err := service.UpsertWeight(sqldb, id, service.WeightInput{Date: "2026-03-01", Weight: 89}); err != nil {
		t.Fatalf("upsert weight: %v", err)
	}
	if err := service.SetConfig(sqldb, service.ConfigActiveProfile, id); err != nil {
		t.Fatalf("set active profile: %v", err)
	}

	if err := service.DeleteProfile(sqldb, id); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	for _, table := range []string{"food_items", "weight_entries"} {
		var n int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Fatalf("expected %s to be empty after delete, got %d", table, n)
		}
	}
	if _, ok, err := service.GetConfig(sqldb, service.ConfigActiveProfile); err != nil || ok {
		t.Fatalf("expected active profile cleared, ok=%v err=%v", ok, err)
	}
	if err := service.DeleteProfile(sqldb, id); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected second delete to be not found, got %v", err)
	}
}

func TestProfileTargetsMatchCalculator(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	id := mustCreateProfile(t, sqldb, sampleProfile())

	_, targets, err := service.ProfileTargets(sqldb, id)
	if err != nil {
		t.Fatalf("profile targets: %v", err)
	}
	if targets.Calories != 1814 || targets.ProteinG != 136 || targets.CarbsG != 181 || targets.FatG != 60 {
		t.Fatalf("unexpected targets: %+v", targets)
	}
}

func TestResolveProfile(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if _, err := service.ResolveProfile(sqldb, ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected error with no profiles, got %v", err)
	}
	first := mustCreateProfile(t, sqldb, sampleProfile())
	got, err := service.ResolveProfile(sqldb, "")
	if err != nil || got != first {
		t.Fatalf("expected single profile to resolve, got %q err=%v", got, err)
	}

	in := sampleProfile()
	in.Name = "Second"
	second := mustCreateProfile(t, sqldb, in)
	if _, err := service.ResolveProfile(sqldb, ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if err := service.SetConfig(sqldb, service.ConfigActiveProfile, second); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if got, err := service.ResolveProfile(sqldb, ""); err != nil || got != second {
		t.Fatalf("expected active profile, got %q err=%v", got, err)
	}
	if got, err := service.ResolveProfile(sqldb, first); err != nil || got != first {
		t.Fatalf("expected explicit profile to win, got %q err=%v", got, err)
	}
	if _, err := service.ResolveProfile(sqldb, "nope"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected unknown explicit profile to fail, got %v", err)
	}
	if err := service.SetConfig(sqldb, service.ConfigActiveProfile, "nope"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected active profile to require an existing profile, got %v", err)
	}
}
