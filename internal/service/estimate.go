package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/izikbr/calorific2-app/internal/app"
	"github.com/izikbr/calorific2-app/internal/model"
)

const (
	EstimateKindText    = "text"
	EstimateKindImage   = "image"
	EstimateKindBarcode = "barcode"

	defaultEstimateTTL = 7 * 24 * time.Hour
	maxImageBytes      = 10 << 20
)

// ErrEstimateUnavailable means the estimator could not produce an answer.
// It is not fatal: nothing was written and the call can be retried.
var ErrEstimateUnavailable = errors.New("estimation unavailable")

var errNoEstimator = fmt.Errorf("%w: no estimator configured", ErrEstimateUnavailable)

// Estimator turns a photo or a free-text description into nutrition records.
// FromText returns nil when nothing was recognized.
type Estimator interface {
	FromImage(ctx context.Context, image []byte, mimeType string) ([]model.FoodEstimate, error)
	FromText(ctx context.Context, description string) (*model.FoodEstimate, error)
}

// EstimateCache stores estimator answers by content hash.
type EstimateCache interface {
	Get(ctx context.Context, key string) ([]model.FoodEstimate, bool, error)
	Put(ctx context.Context, key, kind string, items []model.FoodEstimate, ttl time.Duration) error
}

type EstimateConfig struct {
	Estimator Estimator
	// Cache is optional.
	Cache EstimateCache
	TTL   time.Duration
	// Scope separates cache entries produced by different models or
	// languages, e.g. "gemini-2.5-flash/English".
	Scope string
	Log   logrus.FieldLogger
}

type EstimateResult struct {
	Kind      string               `json:"kind"`
	Items     []model.FoodEstimate `json:"items"`
	FromCache bool                 `json:"from_cache"`
}

func EstimateText(ctx context.Context, cfg EstimateConfig, description string) (EstimateResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return EstimateResult{}, invalidf("food description is required")
	}
	if cfg.Estimator == nil {
		return EstimateResult{}, errNoEstimator
	}
	return runEstimate(ctx, cfg, EstimateKindText, []byte(strings.ToLower(description)), func(ctx context.Context) ([]model.FoodEstimate, error) {
		item, err := cfg.Estimator.FromText(ctx, description)
		if err != nil || item == nil {
			return nil, err
		}
		return []model.FoodEstimate{*item}, nil
	})
}

func EstimateImage(ctx context.Context, cfg EstimateConfig, image []byte, mimeType string) (EstimateResult, error) {
	if len(image) == 0 {
		return EstimateResult{}, invalidf("image is empty")
	}
	if len(image) > maxImageBytes {
		return EstimateResult{}, invalidf("image is larger than %d MB", maxImageBytes>>20)
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if !strings.HasPrefix(mimeType, "image/") {
		return EstimateResult{}, invalidf("unsupported image type %q", mimeType)
	}
	if cfg.Estimator == nil {
		return EstimateResult{}, errNoEstimator
	}
	return runEstimate(ctx, cfg, EstimateKindImage, image, func(ctx context.Context) ([]model.FoodEstimate, error) {
		return cfg.Estimator.FromImage(ctx, image, mimeType)
	})
}

func runEstimate(ctx context.Context, cfg EstimateConfig, kind string, payload []byte, call func(context.Context) ([]model.FoodEstimate, error)) (EstimateResult, error) {
	log := cfg.Log
	if log == nil {
		log = app.DiscardLogger()
	}
	key := EstimateCacheKey(kind, cfg.Scope, payload)
	log = log.WithFields(logrus.Fields{"kind": kind, "cache_key": key[:12]})

	if cfg.Cache != nil {
		items, ok, err := cfg.Cache.Get(ctx, key)
		switch {
		case err != nil:
			log.WithError(err).Warn("estimate cache read failed")
		case ok:
			log.Debug("estimate cache hit")
			return EstimateResult{Kind: kind, Items: items, FromCache: true}, nil
		default:
			log.Debug("estimate cache miss")
		}
	}

	start := time.Now()
	raw, err := call(ctx)
	if err != nil {
		log.WithError(err).WithField("latency", time.Since(start)).Warn("estimate failed")
		return EstimateResult{}, fmt.Errorf("%w: %v", ErrEstimateUnavailable, err)
	}
	items := sanitizeEstimates(kind, raw)
	log.WithFields(logrus.Fields{"items": len(items), "latency": time.Since(start)}).Info("estimate completed")

	if cfg.Cache != nil && len(items) > 0 {
		ttl := cfg.TTL
		if ttl <= 0 {
			ttl = defaultEstimateTTL
		}
		if err := cfg.Cache.Put(ctx, key, kind, items, ttl); err != nil {
			log.WithError(err).Warn("estimate cache write failed")
		}
	}
	return EstimateResult{Kind: kind, Items: items}, nil
}

// sanitizeEstimates drops unnamed records, clamps negative or non-finite
// numbers to zero and, for text, treats a zero-calorie answer as nothing
// recognized.
func sanitizeEstimates(kind string, raw []model.FoodEstimate) []model.FoodEstimate {
	out := make([]model.FoodEstimate, 0, len(raw))
	for _, e := range raw {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		e.Calories = clampNutrient(e.Calories)
		e.ProteinG = clampNutrient(e.ProteinG)
		e.CarbsG = clampNutrient(e.CarbsG)
		e.FatG = clampNutrient(e.FatG)
		if kind == EstimateKindText && e.Calories <= 0 {
			continue
		}
		out = append(out, e)
	}
	return out
}

func clampNutrient(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// EstimateCacheKey hashes the request so identical photos or descriptions
// reuse an earlier answer.
func EstimateCacheKey(kind, scope string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// EstimatesToInputs converts estimator output into log inputs stamped with
// the source type for kind.
func EstimatesToInputs(kind string, items []model.FoodEstimate) []FoodItemInput {
	source := model.SourceAIText
	switch kind {
	case EstimateKindImage:
		source = model.SourceAIImage
	case EstimateKindBarcode:
		source = model.SourceBarcode
	}
	out := make([]FoodItemInput, 0, len(items))
	for _, e := range items {
		out = append(out, EstimateToInput(e, 1, source))
	}
	return out
}
