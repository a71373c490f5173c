package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  avatar TEXT NOT NULL DEFAULT '',
  sex TEXT NOT NULL CHECK(sex IN ('male', 'female')),
  age INTEGER NOT NULL CHECK(age > 0),
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  target_weight_kg REAL NOT NULL DEFAULT 0 CHECK(target_weight_kg >= 0),
  activity_level TEXT NOT NULL CHECK(activity_level IN ('low', 'medium', 'high')),
  goal TEXT NOT NULL CHECK(goal IN ('lose', 'maintain', 'gain')),
  lose_weight_weeks INTEGER NOT NULL DEFAULT 0 CHECK(lose_weight_weeks >= 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS food_items (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  name TEXT NOT NULL,
  calories INTEGER NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL CHECK(protein_g >= 0),
  carbs_g REAL NOT NULL CHECK(carbs_g >= 0),
  fat_g REAL NOT NULL CHECK(fat_g >= 0),
  log_date TEXT NOT NULL,
  consumed_at TEXT NOT NULL,
  source_type TEXT NOT NULL DEFAULT 'manual',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_food_items_profile_date ON food_items(profile_id, log_date);

CREATE TABLE IF NOT EXISTS weight_entries (
  profile_id TEXT NOT NULL,
  entry_date TEXT NOT NULL,
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(profile_id, entry_date),
  FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);
`,
	},
	{
		version: 2,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 3,
		name:    "estimate_cache",
		sql: `
CREATE TABLE IF NOT EXISTS estimate_cache (
  cache_key TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  fetched_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_estimate_cache_expires_at ON estimate_cache(expires_at);
`,
	},
}

// LatestVersion is the schema version after ApplyMigrations succeeds.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// ApplyMigrations brings the schema up to date and returns the versions it
// applied in this call.
func ApplyMigrations(db *sql.DB) ([]int, error) {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	applied := make([]int, 0)
	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return applied, fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return applied, fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
		applied = append(applied, m.version)
	}
	return applied, nil
}
