package service

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/nutrition"
)

// SnapshotVersion is the schema_version written by ExportSnapshot.
// Versions 0 and 1 are browser-storage dumps migrated on import.
const SnapshotVersion = 2

const (
	legacyProfilesKey   = "calorik-profiles"
	legacyFoodLogPrefix = "calorik-foodlog-"
)

type Snapshot struct {
	SchemaVersion int                 `json:"schema_version"`
	ExportedAt    time.Time           `json:"exported_at"`
	ActiveProfile string              `json:"active_profile,omitempty"`
	Profiles      []model.Profile     `json:"profiles"`
	Foods         []model.FoodItem    `json:"foods"`
	Weights       []model.WeightEntry `json:"weights"`
}

type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"
	ImportModeReplace ImportMode = "replace"
)

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	SourceVersion    int      `json:"source_version"`
	ProfilesInserted int      `json:"profiles_inserted"`
	FoodsInserted    int      `json:"foods_inserted"`
	WeightsInserted  int      `json:"weights_inserted"`
	Skipped          int      `json:"skipped"`
	DryRun           bool     `json:"dry_run"`
	Warnings         []string `json:"warnings,omitempty"`
}

func (r *ImportReport) warnf(format string, args ...any) {
	r.Skipped++
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func ParseImportMode(value string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(value))); m {
	case "", ImportModeMerge:
		return ImportModeMerge, nil
	case ImportModeReplace:
		return m, nil
	default:
		return "", invalidf("invalid import mode %q (use merge or replace)", value)
	}
}

func ExportSnapshot(db *sql.DB) (*Snapshot, error) {
	out := &Snapshot{SchemaVersion: SnapshotVersion, ExportedAt: time.Now().UTC()}

	profiles, err := ListProfiles(db)
	if err != nil {
		return nil, err
	}
	out.Profiles = profiles
	out.Foods = make([]model.FoodItem, 0)
	out.Weights = make([]model.WeightEntry, 0)
	for _, p := range profiles {
		foods, err := listAllFood(db, p.ID)
		if err != nil {
			return nil, err
		}
		out.Foods = append(out.Foods, foods...)
		weights, err := ListWeights(db, p.ID)
		if err != nil {
			return nil, err
		}
		out.Weights = append(out.Weights, weights...)
	}
	active, ok, err := GetConfig(db, ConfigActiveProfile)
	if err != nil {
		return nil, err
	}
	if ok {
		out.ActiveProfile = active
	}
	return out, nil
}

// ParseSnapshot decodes an export file of any known version and migrates it
// to the current shape. The returned int is the version that was detected.
func ParseSnapshot(raw []byte) (*Snapshot, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, 0, invalidf("import file is empty")
	}
	if raw[0] == '[' {
		var profiles []legacyProfile
		if err := json.Unmarshal(raw, &profiles); err != nil {
			return nil, 0, invalidf("parse legacy profile list: %v", err)
		}
		snap, err := migrateLegacyProfiles(profiles)
		return snap, 1, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, 0, invalidf("parse import json: %v", err)
	}
	if v, ok := top["schema_version"]; ok {
		var version int
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, 0, invalidf("invalid schema_version: %v", err)
		}
		if version != SnapshotVersion {
			return nil, version, invalidf("unsupported schema_version %d (expected %d)", version, SnapshotVersion)
		}
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, version, invalidf("parse snapshot: %v", err)
		}
		return &snap, version, nil
	}
	if _, ok := top[legacyProfilesKey]; ok {
		snap, err := migrateStorageDump(top)
		return snap, 0, err
	}
	if rawProfiles, ok := top["profiles"]; ok {
		var profiles []legacyProfile
		if err := json.Unmarshal(rawProfiles, &profiles); err != nil {
			return nil, 1, invalidf("parse legacy profiles: %v", err)
		}
		snap, err := migrateLegacyProfiles(profiles)
		return snap, 1, err
	}
	return nil, 0, invalidf("unrecognized import format (no schema_version, profiles or %s key)", legacyProfilesKey)
}

type legacyProfile struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Avatar          string          `json:"avatar"`
	Gender          string          `json:"gender"`
	Age             float64         `json:"age"`
	Height          float64         `json:"height"`
	Weight          float64         `json:"weight"`
	TargetWeight    float64         `json:"targetWeight"`
	ActivityLevel   string          `json:"activityLevel"`
	Goal            string          `json:"goal"`
	LoseWeightWeeks float64         `json:"loseWeightWeeks"`
	FoodLog         json.RawMessage `json:"foodLog"`
	WeightLog       []legacyWeight  `json:"weightLog"`
}

type legacyFood struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Timestamp string  `json:"timestamp"`
}

type legacyWeight struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// decodeStorageValue accepts a value as stored by the browser (a JSON string
// holding JSON) or already decoded.
func decodeStorageValue(raw json.RawMessage, dst any) error {
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		return json.Unmarshal([]byte(inner), dst)
	}
	return json.Unmarshal(raw, dst)
}

func migrateStorageDump(top map[string]json.RawMessage) (*Snapshot, error) {
	var profiles []legacyProfile
	if err := decodeStorageValue(top[legacyProfilesKey], &profiles); err != nil {
		return nil, invalidf("parse %s: %v", legacyProfilesKey, err)
	}
	snap, err := migrateLegacyProfiles(profiles)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(top))
	for k := range top {
		if strings.HasPrefix(k, legacyFoodLogPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		profileID, date, ok := splitFoodLogKey(k)
		if !ok {
			return nil, invalidf("malformed food log key %q", k)
		}
		var foods []legacyFood
		if err := decodeStorageValue(top[k], &foods); err != nil {
			return nil, invalidf("parse %s: %v", k, err)
		}
		for _, f := range foods {
			snap.Foods = append(snap.Foods, migrateLegacyFood(profileID, date, f))
		}
	}
	return snap, nil
}

// splitFoodLogKey parses calorik-foodlog-<profileID>-<YYYY-MM-DD>.
func splitFoodLogKey(key string) (string, string, bool) {
	rest := strings.TrimPrefix(key, legacyFoodLogPrefix)
	if len(rest) < len(dateLayout)+2 {
		return "", "", false
	}
	date := rest[len(rest)-len(dateLayout):]
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", "", false
	}
	sep := len(rest) - len(dateLayout) - 1
	if rest[sep] != '-' {
		return "", "", false
	}
	return rest[:sep], date, true
}

func migrateLegacyProfiles(in []legacyProfile) (*Snapshot, error) {
	snap := &Snapshot{
		SchemaVersion: SnapshotVersion,
		ExportedAt:    time.Now().UTC(),
		Profiles:      make([]model.Profile, 0, len(in)),
		Foods:         make([]model.FoodItem, 0),
		Weights:       make([]model.WeightEntry, 0),
	}
	for _, lp := range in {
		id := strings.TrimSpace(lp.ID)
		if id == "" {
			id = uuid.NewString()
		}
		snap.Profiles = append(snap.Profiles, model.Profile{
			ID:              id,
			Name:            lp.Name,
			Avatar:          lp.Avatar,
			Sex:             model.Sex(strings.ToLower(strings.TrimSpace(lp.Gender))),
			Age:             int(math.Round(lp.Age)),
			HeightCm:        lp.Height,
			WeightKg:        lp.Weight,
			TargetWeightKg:  lp.TargetWeight,
			ActivityLevel:   model.ActivityLevel(strings.ToLower(strings.TrimSpace(lp.ActivityLevel))),
			Goal:            model.Goal(strings.ToLower(strings.TrimSpace(lp.Goal))),
			LoseWeightWeeks: int(math.Round(lp.LoseWeightWeeks)),
		})
		foods, err := legacyFoodLog(id, lp.FoodLog)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", lp.Name, err)
		}
		snap.Foods = append(snap.Foods, foods...)
		for _, w := range lp.WeightLog {
			snap.Weights = append(snap.Weights, model.WeightEntry{ProfileID: id, Date: w.Date, WeightKg: w.Weight})
		}
	}
	return snap, nil
}

// legacyFoodLog reads an embedded food log, either keyed by date or a flat
// list dated by each item's timestamp.
func legacyFoodLog(profileID string, raw json.RawMessage) ([]model.FoodItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	out := make([]model.FoodItem, 0)
	if raw[0] == '[' {
		var foods []legacyFood
		if err := json.Unmarshal(raw, &foods); err != nil {
			return nil, invalidf("parse foodLog: %v", err)
		}
		for _, f := range foods {
			out = append(out, migrateLegacyFood(profileID, "", f))
		}
		return out, nil
	}
	var byDate map[string][]legacyFood
	if err := json.Unmarshal(raw, &byDate); err != nil {
		return nil, invalidf("parse foodLog: %v", err)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, d := range dates {
		for _, f := range byDate[d] {
			out = append(out, migrateLegacyFood(profileID, d, f))
		}
	}
	return out, nil
}

func migrateLegacyFood(profileID, date string, f legacyFood) model.FoodItem {
	consumed, err := time.Parse(time.RFC3339, strings.TrimSpace(f.Timestamp))
	if err != nil {
		consumed = time.Time{}
	}
	if date == "" && !consumed.IsZero() {
		date = consumed.Local().Format(dateLayout)
	}
	if consumed.IsZero() && date != "" {
		if d, err := time.ParseInLocation(dateLayout, date, time.Local); err == nil {
			consumed = d.Add(12 * time.Hour)
		}
	}
	id := strings.TrimSpace(f.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return model.FoodItem{
		ID:         id,
		ProfileID:  profileID,
		Name:       f.Name,
		Calories:   int(math.Round(f.Calories)),
		ProteinG:   f.Protein,
		CarbsG:     f.Carbs,
		FatG:       f.Fat,
		LogDate:    date,
		ConsumedAt: consumed,
		SourceType: model.SourceImport,
	}
}

// ImportSnapshot writes a snapshot in one transaction. Merge mode keeps
// existing rows and skips incoming ones with the same id (or the same
// profile and date for weights); replace mode deletes every profile first.
// Rows that fail validation are skipped with a warning. DryRun runs the
// whole import and rolls it back.
func ImportSnapshot(db *sql.DB, snap *Snapshot, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{SourceVersion: snap.SchemaVersion, DryRun: opts.DryRun}
	mode, err := ParseImportMode(string(opts.Mode))
	if err != nil {
		return report, err
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace {
		if _, err := tx.Exec(`DELETE FROM profiles`); err != nil {
			return report, fmt.Errorf("clear profiles for replace mode: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM app_config WHERE key = ?`, ConfigActiveProfile); err != nil {
			return report, fmt.Errorf("clear active profile for replace mode: %w", err)
		}
	}

	for _, p := range snap.Profiles {
		p.Name = strings.TrimSpace(p.Name)
		if p.ID == "" || p.Name == "" {
			report.warnf("profile %q: missing id or name", p.Name)
			continue
		}
		if err := nutrition.Validate(p); err != nil {
			report.warnf("profile %q: %v", p.Name, err)
			continue
		}
		res, err := tx.Exec(`
INSERT OR IGNORE INTO profiles(id, name, avatar, sex, age, height_cm, weight_kg, target_weight_kg, activity_level, goal, lose_weight_weeks)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.ID, p.Name, p.Avatar, string(p.Sex), p.Age, p.HeightCm, p.WeightKg, p.TargetWeightKg, string(p.ActivityLevel), string(p.Goal), p.LoseWeightWeeks)
		if err != nil {
			return report, fmt.Errorf("import profile %q: %w", p.Name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			report.warnf("profile %q: id %s already exists", p.Name, p.ID)
			continue
		}
		report.ProfilesInserted++
	}

	for _, f := range snap.Foods {
		if err := validateFoodFields(f.Name, f.Calories, f.ProteinG, f.CarbsG, f.FatG); err != nil {
			report.warnf("food %q: %v", f.Name, err)
			continue
		}
		date, err := normalizeDate(f.LogDate)
		if err != nil || strings.TrimSpace(f.LogDate) == "" {
			report.warnf("food %q: missing or invalid log date %q", f.Name, f.LogDate)
			continue
		}
		if !profileExistsTx(tx, f.ProfileID) {
			report.warnf("food %q: unknown profile %q", f.Name, f.ProfileID)
			continue
		}
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		if f.ConsumedAt.IsZero() {
			f.ConsumedAt = time.Now()
		}
		if !validSourceTypes[f.SourceType] {
			f.SourceType = model.SourceImport
		}
		res, err := tx.Exec(`
INSERT OR IGNORE INTO food_items(id, profile_id, name, calories, protein_g, carbs_g, fat_g, log_date, consumed_at, source_type)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, f.ID, f.ProfileID, strings.TrimSpace(f.Name), f.Calories, f.ProteinG, f.CarbsG, f.FatG, date, f.ConsumedAt.Format(time.RFC3339), f.SourceType)
		if err != nil {
			return report, fmt.Errorf("import food %q: %w", f.Name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			report.warnf("food %q: id %s already exists", f.Name, f.ID)
			continue
		}
		report.FoodsInserted++
	}

	for _, w := range snap.Weights {
		date, err := normalizeDate(w.Date)
		if err != nil || strings.TrimSpace(w.Date) == "" {
			report.warnf("weight for %q: invalid date %q", w.ProfileID, w.Date)
			continue
		}
		if math.IsNaN(w.WeightKg) || w.WeightKg <= 0 {
			report.warnf("weight for %q on %s: weight must be > 0", w.ProfileID, date)
			continue
		}
		if !profileExistsTx(tx, w.ProfileID) {
			report.warnf("weight on %s: unknown profile %q", date, w.ProfileID)
			continue
		}
		res, err := tx.Exec(`INSERT OR IGNORE INTO weight_entries(profile_id, entry_date, weight_kg) VALUES(?, ?, ?)`, w.ProfileID, date, w.WeightKg)
		if err != nil {
			return report, fmt.Errorf("import weight %s: %w", date, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			report.warnf("weight for %q on %s already exists", w.ProfileID, date)
			continue
		}
		report.WeightsInserted++
	}

	if snap.ActiveProfile != "" && profileExistsTx(tx, snap.ActiveProfile) {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO app_config(key, value) VALUES(?, ?)`, ConfigActiveProfile, snap.ActiveProfile); err != nil {
			return report, fmt.Errorf("import active profile: %w", err)
		}
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import tx: %w", err)
	}
	return report, nil
}

func profileExistsTx(tx *sql.Tx, id string) bool {
	var one int
	return tx.QueryRow(`SELECT 1 FROM profiles WHERE id = ?`, id).Scan(&one) == nil
}
