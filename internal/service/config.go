package service

import (
	"database/sql"
	"fmt"
	"strings"
)

const (
	// ConfigActiveProfile names the profile commands use when none is given.
	ConfigActiveProfile = "active_profile"
	// ConfigWeightUnit is the preferred display unit for weights (kg or lb).
	ConfigWeightUnit = "weight_unit"
)

func SetConfig(db *sql.DB, key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return invalidf("config key is required")
	}
	value = strings.TrimSpace(value)
	switch key {
	case ConfigWeightUnit:
		if u := normalizeWeightUnit(value); u != "kg" && u != "lb" {
			return invalidf("invalid weight unit %q (use kg or lb)", value)
		}
		value = normalizeWeightUnit(value)
	case ConfigActiveProfile:
		if err := ensureProfileExists(db, value); err != nil {
			return err
		}
	}
	_, err := db.Exec(`
INSERT INTO app_config(key, value, updated_at)
VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
`, key, value)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

func GetConfig(db *sql.DB, key string) (string, bool, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return "", false, invalidf("config key is required")
	}
	var value string
	err := db.QueryRow(`SELECT value FROM app_config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get config %q: %w", key, err)
	}
	return value, true, nil
}

func ListConfig(db *sql.DB) (map[string]string, error) {
	rows, err := db.Query(`SELECT key, value FROM app_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return out, nil
}

// ResolveProfile picks the explicit profile id when given, otherwise the
// active one. A single stored profile is used when no active one is set.
func ResolveProfile(db *sql.DB, explicit string) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		if err := ensureProfileExists(db, id); err != nil {
			return "", err
		}
		return id, nil
	}
	active, ok, err := GetConfig(db, ConfigActiveProfile)
	if err != nil {
		return "", err
	}
	if ok && active != "" {
		if err := ensureProfileExists(db, active); err != nil {
			return "", fmt.Errorf("active profile: %w", err)
		}
		return active, nil
	}
	profiles, err := ListProfiles(db)
	if err != nil {
		return "", err
	}
	if len(profiles) == 1 {
		return profiles[0].ID, nil
	}
	if len(profiles) == 0 {
		return "", invalidf("no profiles yet; create one with `calorific profile add`")
	}
	return "", invalidf("no active profile; pass --profile or run `calorific profile use <id>`")
}

// PreferredWeightUnit returns the stored display unit, defaulting to kg.
func PreferredWeightUnit(db *sql.DB) (string, error) {
	unit, ok, err := GetConfig(db, ConfigWeightUnit)
	if err != nil {
		return "", err
	}
	if !ok || unit == "" {
		return "kg", nil
	}
	return unit, nil
}
