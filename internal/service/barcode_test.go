package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/izikbr/calorific2-app/internal/model"
	"github.com/izikbr/calorific2-app/internal/service"
)

type fakeLookup struct {
	products map[string]model.FoodEstimate
	search   []model.FoodEstimate
	err      error
	calls    int
}

func (f *fakeLookup) LookupBarcode(_ context.Context, code string) (*model.FoodEstimate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeLookup) SearchProducts(_ context.Context, _ string, limit int) ([]model.FoodEstimate, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.search) > limit {
		return f.search[:limit], nil
	}
	return f.search, nil
}

func TestLookupBarcodeCachesProduct(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	lookup := &fakeLookup{products: map[string]model.FoodEstimate{
		"7290000000001": {Name: "Hummus (100 g)", Calories: 260, ProteinG: 7, CarbsG: 12, FatG: 21},
	}}
	cfg := service.BarcodeConfig{Lookup: lookup, Cache: service.NewSQLiteEstimateCache(sqldb), TTL: time.Hour, Scope: "openfoodfacts"}

	res, err := service.LookupBarcode(context.Background(), cfg, " 7290000000001 ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if res.Kind != service.EstimateKindBarcode || res.FromCache || res.Items[0].Calories != 260 {
		t.Fatalf("unexpected result: %+v", res)
	}
	again, err := service.LookupBarcode(context.Background(), cfg, "7290000000001")
	if err != nil {
		t.Fatalf("lookup again: %v", err)
	}
	if !again.FromCache || lookup.calls != 1 {
		t.Fatalf("expected cached product, fromCache=%v calls=%d", again.FromCache, lookup.calls)
	}

	inputs := service.EstimatesToInputs(res.Kind, res.Items)
	if len(inputs) != 1 || inputs[0].SourceType != model.SourceBarcode {
		t.Fatalf("unexpected log inputs: %+v", inputs)
	}
}

func TestLookupBarcodeErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := service.BarcodeConfig{Lookup: &fakeLookup{}}

	for _, code := range []string{"", "1234", "12345678901234567", "abcdefgh"} {
		if _, err := service.LookupBarcode(ctx, cfg, code); !errors.Is(err, service.ErrInvalidInput) {
			t.Fatalf("%q: expected invalid input, got %v", code, err)
		}
	}
	if _, err := service.LookupBarcode(ctx, cfg, "12345678"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected unknown product to be not found, got %v", err)
	}
	failing := service.BarcodeConfig{Lookup: &fakeLookup{err: errors.New("status 503")}}
	if _, err := service.LookupBarcode(ctx, failing, "12345678"); !errors.Is(err, service.ErrEstimateUnavailable) {
		t.Fatalf("expected lookup failure to be unavailable, got %v", err)
	}
	if _, err := service.LookupBarcode(ctx, service.BarcodeConfig{}, "12345678"); !errors.Is(err, service.ErrEstimateUnavailable) {
		t.Fatalf("expected missing lookup to be unavailable, got %v", err)
	}
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	lookup := &fakeLookup{search: []model.FoodEstimate{
		{Name: "Oat Drink", Calories: 120, FatG: -1},
		{Name: "", Calories: 90},
		{Name: "Oat Bar", Calories: 190},
	}}
	cfg := service.BarcodeConfig{Lookup: lookup}

	got, err := service.SearchProducts(ctx, cfg, "oat", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[0].FatG != 0 || got[1].Name != "Oat Bar" {
		t.Fatalf("unexpected search results: %+v", got)
	}
	if _, err := service.SearchProducts(ctx, cfg, "  ", 5); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected empty query to be invalid, got %v", err)
	}
}
