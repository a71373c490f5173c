package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/izikbr/calorific2-app/internal/nutrition"
)

const BackupFilePrefix = "calorific-"

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	OrphanFoods        int      `json:"orphan_foods"`
	OrphanWeights      int      `json:"orphan_weights"`
	BadFoodDates       int      `json:"bad_food_dates"`
	DuplicateFoodRows  int      `json:"duplicate_food_rows"`
	InvalidProfiles    []string `json:"invalid_profiles,omitempty"`
	ExpiredCacheRows   int      `json:"expired_cache_rows"`
	FixedOrphanRows    int64    `json:"fixed_orphan_rows,omitempty"`
	PurgedCacheRows    int64    `json:"purged_cache_rows,omitempty"`
	ForeignKeysEnabled bool     `json:"foreign_keys_enabled"`
}

// Problems reports whether anything the doctor checks for needs attention.
// Expired cache rows are housekeeping, not a problem.
func (r DoctorReport) Problems() bool {
	return r.OrphanFoods > 0 || r.OrphanWeights > 0 || r.BadFoodDates > 0 ||
		r.DuplicateFoodRows > 0 || len(r.InvalidProfiles) > 0 || !r.ForeignKeysEnabled
}

const datePattern = `[0-9][0-9][0-9][0-9]-[0-9][0-9]-[0-9][0-9]`

// RunDoctor counts rows that break the data model. With fix it deletes
// orphaned food and weight rows and purges expired estimate cache rows.
func RunDoctor(db *sql.DB, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	var fk int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		return report, fmt.Errorf("doctor foreign key check: %w", err)
	}
	report.ForeignKeysEnabled = fk == 1

	counts := []struct {
		dst   *int
		name  string
		query string
	}{
		{&report.OrphanFoods, "orphan food", `SELECT COUNT(1) FROM food_items f LEFT JOIN profiles p ON p.id = f.profile_id WHERE p.id IS NULL`},
		{&report.OrphanWeights, "orphan weight", `SELECT COUNT(1) FROM weight_entries w LEFT JOIN profiles p ON p.id = w.profile_id WHERE p.id IS NULL`},
		{&report.BadFoodDates, "food date", `SELECT COUNT(1) FROM food_items WHERE log_date NOT GLOB '` + datePattern + `'`},
		{&report.DuplicateFoodRows, "duplicate food", `
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt FROM food_items
  GROUP BY profile_id, name, consumed_at, calories
  HAVING cnt > 1
)`},
		{&report.ExpiredCacheRows, "estimate cache", `SELECT COUNT(1) FROM estimate_cache WHERE expires_at < '` + time.Now().UTC().Format(time.RFC3339) + `'`},
	}
	for _, c := range counts {
		if err := db.QueryRow(c.query).Scan(c.dst); err != nil {
			return report, fmt.Errorf("doctor %s check: %w", c.name, err)
		}
	}

	profiles, err := ListProfiles(db)
	if err != nil {
		return report, err
	}
	for _, p := range profiles {
		if err := nutrition.Validate(p); err != nil {
			report.InvalidProfiles = append(report.InvalidProfiles, fmt.Sprintf("%s (%s): %v", p.Name, p.ID, err))
		}
	}

	if !fix {
		return report, nil
	}
	if report.OrphanFoods > 0 || report.OrphanWeights > 0 {
		tx, err := db.Begin()
		if err != nil {
			return report, fmt.Errorf("doctor fix begin tx: %w", err)
		}
		for _, stmt := range []string{
			`DELETE FROM food_items WHERE profile_id NOT IN (SELECT id FROM profiles)`,
			`DELETE FROM weight_entries WHERE profile_id NOT IN (SELECT id FROM profiles)`,
		} {
			res, err := tx.Exec(stmt)
			if err != nil {
				_ = tx.Rollback()
				return report, fmt.Errorf("doctor fix orphans: %w", err)
			}
			n, _ := res.RowsAffected()
			report.FixedOrphanRows += n
		}
		if err := tx.Commit(); err != nil {
			return report, fmt.Errorf("doctor fix commit: %w", err)
		}
	}
	if report.ExpiredCacheRows > 0 {
		n, err := PurgeEstimateCache(db, false)
		if err != nil {
			return report, err
		}
		report.PurgedCacheRows = n
	}
	return report, nil
}

// CreateBackup writes a consistent copy of the open database with VACUUM INTO
// and a .sha256 sidecar next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	outPath = strings.TrimSpace(outPath)
	if outPath == "" {
		return BackupInfo{}, invalidf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, invalidf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("write backup: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// DefaultBackupPath names a timestamped backup file in dir.
func DefaultBackupPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s%s.db", BackupFilePrefix, now.Format("20060102-150405")))
}

// RestoreBackup verifies the checksum sidecar when present and replaces
// dbPath through a temp file and rename. The database must not be open.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return invalidf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return invalidf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch for %s", backupPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	tmp := dbPath + ".restore"
	if err := copyFile(backupPath, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace database: %w", err)
	}
	return nil
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := f.Info()
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
