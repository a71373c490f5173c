package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/izikbr/calorific2-app/internal/model"
)

const defaultBarcodeTTL = 30 * 24 * time.Hour

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// ProductLookup finds packaged products. LookupBarcode returns nil for an
// unknown code.
type ProductLookup interface {
	LookupBarcode(ctx context.Context, barcode string) (*model.FoodEstimate, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]model.FoodEstimate, error)
}

type BarcodeConfig struct {
	Lookup ProductLookup
	// Cache is optional and shared with the estimator cache.
	Cache EstimateCache
	TTL   time.Duration
	Scope string
	Log   logrus.FieldLogger
}

// LookupBarcode resolves a product barcode to one serving's nutrition.
// Unknown codes return ErrNotFound; lookup failures ErrEstimateUnavailable.
func LookupBarcode(ctx context.Context, cfg BarcodeConfig, barcode string) (EstimateResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !barcodePattern.MatchString(barcode) {
		return EstimateResult{}, invalidf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	if cfg.Lookup == nil {
		return EstimateResult{}, fmt.Errorf("%w: no product lookup configured", ErrEstimateUnavailable)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultBarcodeTTL
	}
	est := EstimateConfig{Cache: cfg.Cache, TTL: ttl, Scope: cfg.Scope, Log: cfg.Log}
	res, err := runEstimate(ctx, est, EstimateKindBarcode, []byte(barcode), func(ctx context.Context) ([]model.FoodEstimate, error) {
		item, err := cfg.Lookup.LookupBarcode(ctx, barcode)
		if err != nil || item == nil {
			return nil, err
		}
		return []model.FoodEstimate{*item}, nil
	})
	if err != nil {
		return EstimateResult{}, err
	}
	if len(res.Items) == 0 {
		return EstimateResult{}, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	}
	return res, nil
}

// SearchProducts queries the product database by name. Results are not cached.
func SearchProducts(ctx context.Context, cfg BarcodeConfig, query string, limit int) ([]model.FoodEstimate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidf("search query is required")
	}
	if cfg.Lookup == nil {
		return nil, fmt.Errorf("%w: no product lookup configured", ErrEstimateUnavailable)
	}
	if limit <= 0 || limit > maxPresetResults {
		limit = maxPresetResults
	}
	items, err := cfg.Lookup.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEstimateUnavailable, err)
	}
	return sanitizeEstimates(EstimateKindBarcode, items), nil
}
