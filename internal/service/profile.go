package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/nutrition"
)

type ProfileInput struct {
	Name            string
	Avatar          string
	Sex             string
	Age             int
	HeightCm        float64
	Weight          float64
	TargetWeight    float64
	WeightUnit      string
	ActivityLevel   string
	Goal            string
	LoseWeightWeeks int
}

// ProfilePatch carries a partial update; nil fields are left unchanged.
// WeightUnit applies to Weight and TargetWeight.
type ProfilePatch struct {
	Name            *string
	Avatar          *string
	Sex             *string
	Age             *int
	HeightCm        *float64
	Weight          *float64
	TargetWeight    *float64
	WeightUnit      string
	ActivityLevel   *string
	Goal            *string
	LoseWeightWeeks *int
}

func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Avatar == nil && p.Sex == nil && p.Age == nil &&
		p.HeightCm == nil && p.Weight == nil && p.TargetWeight == nil &&
		p.ActivityLevel == nil && p.Goal == nil && p.LoseWeightWeeks == nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const profileColumns = `id, name, avatar, sex, age, height_cm, weight_kg, target_weight_kg, activity_level, goal, lose_weight_weeks, created_at, updated_at`

func CreateProfile(db *sql.DB, in ProfileInput) (string, error) {
	p, err := buildProfile(in)
	if err != nil {
		return "", err
	}
	p.ID = uuid.NewString()
	if err := insertProfile(db, p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func buildProfile(in ProfileInput) (model.Profile, error) {
	var p model.Profile
	p.Name = strings.TrimSpace(in.Name)
	if p.Name == "" {
		return p, invalidf("profile name is required")
	}
	p.Avatar = strings.TrimSpace(in.Avatar)
	var err error
	if p.Sex, err = model.ParseSex(in.Sex); err != nil {
		return p, invalidf("%v", err)
	}
	if p.ActivityLevel, err = model.ParseActivityLevel(in.ActivityLevel); err != nil {
		return p, invalidf("%v", err)
	}
	if p.Goal, err = model.ParseGoal(in.Goal); err != nil {
		return p, invalidf("%v", err)
	}
	if p.WeightKg, err = convertWeightToKg(in.Weight, in.WeightUnit); err != nil {
		return p, err
	}
	if in.TargetWeight != 0 {
		if p.TargetWeightKg, err = convertWeightToKg(in.TargetWeight, in.WeightUnit); err != nil {
			return p, fmt.Errorf("target %w", err)
		}
	}
	p.Age = in.Age
	p.HeightCm = in.HeightCm
	p.LoseWeightWeeks = in.LoseWeightWeeks
	if err := nutrition.Validate(p); err != nil {
		return p, err
	}
	return p, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertProfile(db execer, p model.Profile) error {
	_, err := db.Exec(`
INSERT INTO profiles(id, name, avatar, sex, age, height_cm, weight_kg, target_weight_kg, activity_level, goal, lose_weight_weeks)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.ID, p.Name, p.Avatar, string(p.Sex), p.Age, p.HeightCm, p.WeightKg, p.TargetWeightKg, string(p.ActivityLevel), string(p.Goal), p.LoseWeightWeeks)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func ProfileByID(db *sql.DB, id string) (model.Profile, error) {
	id, err := requireProfileID(id)
	if err != nil {
		return model.Profile{}, err
	}
	p, err := scanProfile(db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Profile{}, fmt.Errorf("profile %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile %q: %w", id, err)
	}
	return p, nil
}

func ListProfiles(db *sql.DB) ([]model.Profile, error) {
	rows, err := db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

func UpdateProfile(db *sql.DB, id string, patch ProfilePatch) (model.Profile, error) {
	if patch.Empty() {
		return model.Profile{}, invalidf("nothing to update")
	}
	p, err := ProfileByID(db, id)
	if err != nil {
		return model.Profile{}, err
	}
	if err := applyProfilePatch(&p, patch); err != nil {
		return model.Profile{}, err
	}
	if err := nutrition.Validate(p); err != nil {
		return model.Profile{}, err
	}

	res, err := db.Exec(`
UPDATE profiles
SET name = ?, avatar = ?, sex = ?, age = ?, height_cm = ?, weight_kg = ?, target_weight_kg = ?,
    activity_level = ?, goal = ?, lose_weight_weeks = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, p.Name, p.Avatar, string(p.Sex), p.Age, p.HeightCm, p.WeightKg, p.TargetWeightKg, string(p.ActivityLevel), string(p.Goal), p.LoseWeightWeeks, p.ID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("update profile %q: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.Profile{}, fmt.Errorf("read rows affected for profile %q: %w", p.ID, err)
	}
	if affected == 0 {
		return model.Profile{}, fmt.Errorf("profile %q: %w", p.ID, ErrNotFound)
	}
	return ProfileByID(db, p.ID)
}

func applyProfilePatch(p *model.Profile, patch ProfilePatch) error {
	var err error
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return invalidf("profile name is required")
		}
		p.Name = name
	}
	if patch.Avatar != nil {
		p.Avatar = strings.TrimSpace(*patch.Avatar)
	}
	if patch.Sex != nil {
		if p.Sex, err = model.ParseSex(*patch.Sex); err != nil {
			return invalidf("%v", err)
		}
	}
	if patch.ActivityLevel != nil {
		if p.ActivityLevel, err = model.ParseActivityLevel(*patch.ActivityLevel); err != nil {
			return invalidf("%v", err)
		}
	}
	if patch.Goal != nil {
		if p.Goal, err = model.ParseGoal(*patch.Goal); err != nil {
			return invalidf("%v", err)
		}
	}
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.HeightCm != nil {
		p.HeightCm = *patch.HeightCm
	}
	if patch.Weight != nil {
		if p.WeightKg, err = convertWeightToKg(*patch.Weight, patch.WeightUnit); err != nil {
			return err
		}
	}
	if patch.TargetWeight != nil {
		if *patch.TargetWeight == 0 {
			p.TargetWeightKg = 0
		} else if p.TargetWeightKg, err = convertWeightToKg(*patch.TargetWeight, patch.WeightUnit); err != nil {
			return fmt.Errorf("target %w", err)
		}
	}
	if patch.LoseWeightWeeks != nil {
		p.LoseWeightWeeks = *patch.LoseWeightWeeks
	}
	return nil
}

// DeleteProfile removes the profile; its food and weight logs go with it
// through ON DELETE CASCADE. The active-profile setting is cleared if it
// pointed here.
func DeleteProfile(db *sql.DB, id string) error {
	id, err := requireProfileID(id)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete profile tx: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete profile %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read rows affected for profile %q: %w", id, err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("profile %q: %w", id, ErrNotFound)
	}
	if _, err := tx.Exec(`DELETE FROM app_config WHERE key = ? AND value = ?`, ConfigActiveProfile, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear active profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete profile tx: %w", err)
	}
	return nil
}

// ProfileTargets loads a profile and runs the goal calculator on it.
func ProfileTargets(db *sql.DB, id string) (model.Profile, nutrition.Targets, error) {
	p, err := ProfileByID(db, id)
	if err != nil {
		return model.Profile{}, nutrition.Targets{}, err
	}
	targets, err := nutrition.Calculate(p)
	if err != nil {
		return p, nutrition.Targets{}, fmt.Errorf("targets for profile %q: %w", id, err)
	}
	return p, targets, nil
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var p model.Profile
	var sex, activity, goal string
	err := row.Scan(&p.ID, &p.Name, &p.Avatar, &sex, &p.Age, &p.HeightCm, &p.WeightKg, &p.TargetWeightKg, &activity, &goal, &p.LoseWeightWeeks, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Sex = model.Sex(sex)
	p.ActivityLevel = model.ActivityLevel(activity)
	p.Goal = model.Goal(goal)
	return p, nil
}
