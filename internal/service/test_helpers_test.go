package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/izikbr/calorific2-app/internal/db"
	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calorific.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func sampleProfile() service.ProfileInput {
	return service.ProfileInput{
		Name:            "Dana",
		Sex:             "male",
		Age:             30,
		HeightCm:        180,
		Weight:          90,
		TargetWeight:    80,
		ActivityLevel:   "medium",
		Goal:            "lose",
		LoseWeightWeeks: 10,
	}
}

func mustCreateProfile(t *testing.T, sqldb *sql.DB, in service.ProfileInput) string {
	t.Helper()
	id, err := service.CreateProfile(sqldb, in)
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return id
}

func ptr[T any](v T) *T { return &v }

type fakeEstimator struct {
	text     *model.FoodEstimate
	image    []model.FoodEstimate
	err      error
	calls    int
	lastMIME string
}

func (f *fakeEstimator) FromText(ctx context.Context, description string) (*model.FoodEstimate, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeEstimator) FromImage(ctx context.Context, image []byte, mimeType string) ([]model.FoodEstimate, error) {
	f.calls++
	f.lastMIME = mimeType
	return f.image, f.err
}
