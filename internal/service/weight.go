package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/nutrition"
)

const kgPerLb = 0.45359237

type WeightInput struct {
	Date   string
	Weight float64
	Unit   string
}

// UpsertWeight records the weight for a date, replacing any earlier entry for
// the same date. An entry for today also becomes the profile's current weight.
func UpsertWeight(db *sql.DB, profileID string, in WeightInput) (model.WeightEntry, error) {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return model.WeightEntry{}, err
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return model.WeightEntry{}, err
	}
	weightKg, err := convertWeightToKg(in.Weight, in.Unit)
	if err != nil {
		return model.WeightEntry{}, err
	}
	if err := ensureProfileExists(db, profileID); err != nil {
		return model.WeightEntry{}, err
	}

	tx, err := db.Begin()
	if err != nil {
		return model.WeightEntry{}, fmt.Errorf("begin weight tx: %w", err)
	}
	if _, err := tx.Exec(`
INSERT INTO weight_entries(profile_id, entry_date, weight_kg, updated_at)
VALUES(?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(profile_id, entry_date) DO UPDATE SET weight_kg=excluded.weight_kg, updated_at=excluded.updated_at
`, profileID, date, weightKg); err != nil {
		_ = tx.Rollback()
		return model.WeightEntry{}, fmt.Errorf("upsert weight for %s: %w", date, err)
	}
	if date == Today() {
		if _, err := tx.Exec(`UPDATE profiles SET weight_kg = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, weightKg, profileID); err != nil {
			_ = tx.Rollback()
			return model.WeightEntry{}, fmt.Errorf("sync profile weight: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.WeightEntry{}, fmt.Errorf("commit weight tx: %w", err)
	}
	return model.WeightEntry{ProfileID: profileID, Date: date, WeightKg: weightKg}, nil
}

// ListWeights returns every weight entry for the profile, oldest first.
func ListWeights(db *sql.DB, profileID string) ([]model.WeightEntry, error) {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return nil, err
	}
	return queryWeights(db, `SELECT profile_id, entry_date, weight_kg FROM weight_entries WHERE profile_id = ? ORDER BY entry_date ASC`, profileID)
}

func listWeightsBetween(db *sql.DB, profileID, from, to string) ([]model.WeightEntry, error) {
	return queryWeights(db, `
SELECT profile_id, entry_date, weight_kg FROM weight_entries
WHERE profile_id = ? AND entry_date >= ? AND entry_date <= ?
ORDER BY entry_date ASC
`, profileID, from, to)
}

func queryWeights(db *sql.DB, query string, args ...any) ([]model.WeightEntry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	defer rows.Close()

	items := make([]model.WeightEntry, 0)
	for rows.Next() {
		var w model.WeightEntry
		if err := rows.Scan(&w.ProfileID, &w.Date, &w.WeightKg); err != nil {
			return nil, fmt.Errorf("scan weight entry: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weight entries: %w", err)
	}
	return items, nil
}

func DeleteWeight(db *sql.DB, profileID, date string) error {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(date) == "" {
		return invalidf("date is required")
	}
	date, err = normalizeDate(date)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM weight_entries WHERE profile_id = ? AND entry_date = ?`, profileID, date)
	if err != nil {
		return fmt.Errorf("delete weight for %s: %w", date, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("weight entry for %s: %w", date, ErrNotFound)
	}
	return nil
}

func ensureProfileExists(db *sql.DB, profileID string) error {
	var exists int
	err := db.QueryRow(`SELECT 1 FROM profiles WHERE id = ?`, profileID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("profile %q: %w", profileID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check profile %q: %w", profileID, err)
	}
	return nil
}

func convertWeightToKg(value float64, unit string) (float64, error) {
	if err := validateNonNegativeFloat("weight", value); err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, invalidf("weight must be > 0")
	}
	var kg float64
	switch normalizeWeightUnit(unit) {
	case "kg":
		kg = value
	case "lb":
		kg = value * kgPerLb
	default:
		return 0, invalidf("invalid weight unit %q (use kg or lb)", unit)
	}
	if kg > nutrition.MaxWeightKg {
		return 0, invalidf("weight must be <= %.0f kg", nutrition.MaxWeightKg)
	}
	return kg, nil
}

func WeightFromKg(weightKg float64, unit string) (float64, error) {
	switch normalizeWeightUnit(unit) {
	case "kg":
		return weightKg, nil
	case "lb":
		return weightKg / kgPerLb, nil
	default:
		return 0, invalidf("invalid weight unit %q (use kg or lb)", unit)
	}
}

func normalizeWeightUnit(unit string) string {
	switch u := strings.ToLower(strings.TrimSpace(unit)); u {
	case "", "kg", "kgs":
		return "kg"
	case "lb", "lbs":
		return "lb"
	default:
		return u
	}
}
