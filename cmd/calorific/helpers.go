package calorific

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/izikbr/calorific2-app/internal/app"
	"github.com/izikbr/calorific2-app/internal/cache"
	"github.com/izikbr/calorific2-app/internal/db"
	"github.com/izikbr/calorific2-app/internal/provider/gemini"
	"github.com/izikbr/calorific2-app/internal/provider/openfoodfacts"
	"github.com/izikbr/calorific2-app/internal/service"
)

func withDB(run func(*sql.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(path); err != nil {
		return err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	applied, err := db.ApplyMigrations(sqldb)
	if err != nil {
		return err
	}
	if len(applied) > 0 && logger != nil {
		logger.WithField("versions", applied).Debug("applied migrations")
	}
	return run(sqldb)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if settings.DBPath != "" {
		return settings.DBPath, nil
	}
	return app.DefaultDBPath()
}

func currentProfile(sqldb *sql.DB) (string, error) {
	return service.ResolveProfile(sqldb, profileFlag)
}

// estimateConfig wires the Gemini client and the configured cache backend.
// The returned func releases the cache connection.
func estimateConfig(ctx context.Context, sqldb *sql.DB) (service.EstimateConfig, func(), error) {
	if settings.Gemini.APIKey == "" {
		return service.EstimateConfig{}, func() {}, gemini.ErrMissingAPIKey
	}
	client := &gemini.Client{
		APIKey:     settings.Gemini.APIKey,
		Model:      settings.Gemini.Model,
		BaseURL:    settings.Gemini.BaseURL,
		Language:   settings.Gemini.Language,
		HTTPClient: &http.Client{Timeout: settings.Gemini.Timeout},
	}
	cfg := service.EstimateConfig{
		Estimator: client,
		TTL:       settings.Cache.TTL,
		Scope:     client.Scope(),
		Log:       logger,
	}
	c, closeCache := estimateCache(ctx, sqldb)
	cfg.Cache = c
	return cfg, closeCache, nil
}

func barcodeConfig(ctx context.Context, sqldb *sql.DB) (service.BarcodeConfig, func()) {
	client := &openfoodfacts.Client{
		BaseURL:    settings.Products.BaseURL,
		HTTPClient: &http.Client{Timeout: settings.Products.Timeout},
	}
	c, closeCache := estimateCache(ctx, sqldb)
	return service.BarcodeConfig{
		Lookup: client,
		Cache:  c,
		TTL:    settings.Products.TTL,
		Scope:  client.Scope(),
		Log:    logger,
	}, closeCache
}

// estimateCache picks the cache for settings.Cache.Backend. It returns nil
// when caching is off.
func estimateCache(ctx context.Context, sqldb *sql.DB) (service.EstimateCache, func()) {
	noop := func() {}
	switch settings.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisEstimateCache(ctx, settings.Cache.RedisURL)
		if err != nil {
			// An unreachable cache should not block lookups.
			logger.WithError(err).Warn("redis cache unavailable, continuing without cache")
			return nil, noop
		}
		return rc, func() { _ = rc.Close() }
	case "off":
		return nil, noop
	default:
		return service.NewSQLiteEstimateCache(sqldb), noop
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// displayWeight renders kg in the preferred unit, e.g. "82.5 kg".
func displayWeight(sqldb *sql.DB, kg float64) string {
	unit, err := service.PreferredWeightUnit(sqldb)
	if err != nil {
		unit = "kg"
	}
	v, err := service.WeightFromKg(kg, unit)
	if err != nil {
		return fmt.Sprintf("%.1f kg", kg)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

func parsePositiveFloat(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}
