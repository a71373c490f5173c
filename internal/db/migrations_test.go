package db_test

import (
	"path/filepath"
	"testing"

	"github.com/izikbr/calorific2-app/internal/db"
)

func TestApplyMigrationsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "calorific.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	first, err := db.ApplyMigrations(sqldb)
	if err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if len(first) != db.LatestVersion() {
		t.Fatalf("expected %d applied versions, got %v", db.LatestVersion(), first)
	}
	second, err := db.ApplyMigrations(sqldb)
	if err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no versions on second run, got %v", second)
	}

	for _, table := range []string{"profiles", "food_items", "weight_entries", "app_config", "estimate_cache"} {
		var count int
		if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count); err != nil {
			t.Fatalf("check table %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestForeignKeysCascadeFromProfiles(t *testing.T) {
	t.Parallel()

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "calorific.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if _, err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := sqldb.Exec(`INSERT INTO profiles(id, name, sex, age, height_cm, weight_kg, activity_level, goal) VALUES('p1', 'Dana', 'female', 30, 165, 60, 'low', 'maintain')`); err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	if _, err := sqldb.Exec(`INSERT INTO weight_entries(profile_id, entry_date, weight_kg) VALUES('p1', '2026-01-01', 60)`); err != nil {
		t.Fatalf("insert weight: %v", err)
	}
	if _, err := sqldb.Exec(`INSERT INTO weight_entries(profile_id, entry_date, weight_kg) VALUES('missing', '2026-01-01', 60)`); err == nil {
		t.Fatalf("expected foreign key violation for unknown profile")
	}
	if _, err := sqldb.Exec(`DELETE FROM profiles WHERE id = 'p1'`); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	var remaining int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM weight_entries`).Scan(&remaining); err != nil {
		t.Fatalf("count weights: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cascade delete, %d weight rows remain", remaining)
	}
}
