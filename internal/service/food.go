package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/izikbr/calorific2-app/internal/model"
)

type FoodItemInput struct {
	Name       string
	Calories   int
	ProteinG   float64
	CarbsG     float64
	FatG       float64
	ConsumedAt time.Time
	SourceType string
}

type UpdateFoodItemInput struct {
	ID       string
	Name     string
	Calories int
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

var validSourceTypes = map[string]bool{
	model.SourceManual:  true,
	model.SourceAIText:  true,
	model.SourceAIImage: true,
	model.SourcePreset:  true,
	model.SourceImport:  true,
	model.SourceBarcode: true,
}

func validateFoodFields(name string, calories int, protein, carbs, fat float64) error {
	if strings.TrimSpace(name) == "" {
		return invalidf("food name is required")
	}
	if err := validateNonNegativeInt("calories", calories); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("protein", protein); err != nil {
		return err
	}
	if err := validateNonNegativeFloat("carbs", carbs); err != nil {
		return err
	}
	return validateNonNegativeFloat("fat", fat)
}

// AppendFoodItems adds items to the profile's log for date in one
// transaction and returns the new ids in input order.
func AppendFoodItems(db *sql.DB, profileID, date string, items []FoodItemInput) ([]string, error) {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return nil, err
	}
	date, err = normalizeDate(date)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, invalidf("at least one food item is required")
	}
	for i, in := range items {
		if err := validateFoodFields(in.Name, in.Calories, in.ProteinG, in.CarbsG, in.FatG); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if in.SourceType != "" && !validSourceTypes[in.SourceType] {
			return nil, fmt.Errorf("item %d: %w", i+1, invalidf("unknown source type %q", in.SourceType))
		}
	}
	if err := ensureProfileExists(db, profileID); err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin food log tx: %w", err)
	}
	ids := make([]string, 0, len(items))
	now := time.Now()
	for _, in := range items {
		id := uuid.NewString()
		consumed := in.ConsumedAt
		if consumed.IsZero() {
			consumed = now
		}
		source := in.SourceType
		if source == "" {
			source = model.SourceManual
		}
		if _, err := tx.Exec(`
INSERT INTO food_items(id, profile_id, name, calories, protein_g, carbs_g, fat_g, log_date, consumed_at, source_type)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, id, profileID, strings.TrimSpace(in.Name), in.Calories, in.ProteinG, in.CarbsG, in.FatG, date, consumed.Format(time.RFC3339), source); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("insert food item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit food log tx: %w", err)
	}
	return ids, nil
}

func RemoveFoodItem(db *sql.DB, profileID, itemID string) error {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return invalidf("food item id is required")
	}
	res, err := db.Exec(`DELETE FROM food_items WHERE id = ? AND profile_id = ?`, itemID, profileID)
	if err != nil {
		return fmt.Errorf("delete food item %q: %w", itemID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("food item %q: %w", itemID, ErrNotFound)
	}
	return nil
}

// UpdateFoodItem rewrites the name and nutrition of an item. The id, log date
// and consumed time stay as they were.
func UpdateFoodItem(db *sql.DB, profileID string, in UpdateFoodItemInput) error {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return err
	}
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return invalidf("food item id is required")
	}
	if err := validateFoodFields(in.Name, in.Calories, in.ProteinG, in.CarbsG, in.FatG); err != nil {
		return err
	}
	res, err := db.Exec(`
UPDATE food_items
SET name = ?, calories = ?, protein_g = ?, carbs_g = ?, fat_g = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND profile_id = ?
`, strings.TrimSpace(in.Name), in.Calories, in.ProteinG, in.CarbsG, in.FatG, in.ID, profileID)
	if err != nil {
		return fmt.Errorf("update food item %q: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("food item %q: %w", in.ID, ErrNotFound)
	}
	return nil
}

func FoodItemByID(db *sql.DB, profileID, itemID string) (model.FoodItem, error) {
	items, err := queryFood(db, `
SELECT id, profile_id, name, calories, protein_g, carbs_g, fat_g, log_date, consumed_at, source_type
FROM food_items WHERE id = ? AND profile_id = ?
`, strings.TrimSpace(itemID), strings.TrimSpace(profileID))
	if err != nil {
		return model.FoodItem{}, err
	}
	if len(items) == 0 {
		return model.FoodItem{}, fmt.Errorf("food item %q: %w", itemID, ErrNotFound)
	}
	return items[0], nil
}

// ListFoodForDate returns the items logged for date, newest first.
func ListFoodForDate(db *sql.DB, profileID, date string) ([]model.FoodItem, error) {
	profileID, err := requireProfileID(profileID)
	if err != nil {
		return nil, err
	}
	date, err = normalizeDate(date)
	if err != nil {
		return nil, err
	}
	return queryFood(db, `
SELECT id, profile_id, name, calories, protein_g, carbs_g, fat_g, log_date, consumed_at, source_type
FROM food_items
WHERE profile_id = ? AND log_date = ?
ORDER BY consumed_at DESC, rowid DESC
`, profileID, date)
}

func listAllFood(db *sql.DB, profileID string) ([]model.FoodItem, error) {
	return queryFood(db, `
SELECT id, profile_id, name, calories, protein_g, carbs_g, fat_g, log_date, consumed_at, source_type
FROM food_items
WHERE profile_id = ?
ORDER BY log_date ASC, consumed_at ASC, rowid ASC
`, profileID)
}

func queryFood(db *sql.DB, query string, args ...any) ([]model.FoodItem, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	defer rows.Close()

	items := make([]model.FoodItem, 0)
	for rows.Next() {
		var f model.FoodItem
		var consumedRaw string
		if err := rows.Scan(&f.ID, &f.ProfileID, &f.Name, &f.Calories, &f.ProteinG, &f.CarbsG, &f.FatG, &f.LogDate, &consumedRaw, &f.SourceType); err != nil {
			return nil, fmt.Errorf("scan food item: %w", err)
		}
		consumed, err := time.Parse(time.RFC3339, consumedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse consumed_at for %q: %w", f.ID, err)
		}
		f.ConsumedAt = consumed
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food items: %w", err)
	}
	return items, nil
}

type dailyCalories struct {
	Date     string
	Calories int
}

func caloriesByDate(db *sql.DB, profileID, from, to string) ([]dailyCalories, error) {
	rows, err := db.Query(`
SELECT log_date, SUM(calories) FROM food_items
WHERE profile_id = ? AND log_date >= ? AND log_date <= ?
GROUP BY log_date
ORDER BY log_date ASC
`, profileID, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate calories: %w", err)
	}
	defer rows.Close()
	out := make([]dailyCalories, 0)
	for rows.Next() {
		var d dailyCalories
		if err := rows.Scan(&d.Date, &d.Calories); err != nil {
			return nil, fmt.Errorf("scan daily calories: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily calories: %w", err)
	}
	return out, nil
}
