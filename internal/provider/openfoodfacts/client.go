// Package openfoodfacts looks up packaged products by barcode and name on
// the Open Food Facts public API.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/izikbr/calorific2-app/internal/model"
)

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	userAgent      = "calorific/1.0 (+https://github.com/izikbr/calorific2-app)"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Scope identifies this source for cache keys.
func (c *Client) Scope() string {
	return "openfoodfacts"
}

// LookupBarcode returns nutrition for one serving of the product, or nil when
// the barcode is unknown or the product has no name.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*model.FoodEstimate, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v2/product/%s.json", url.PathEscape(barcode)))
	if err != nil {
		return nil, err
	}
	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts product: %w", err)
	}
	if parsed.Status != 1 {
		return nil, nil
	}
	e, ok := parsed.Product.estimate()
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// SearchProducts returns up to limit named products matching query.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]model.FoodEstimate, error) {
	if limit <= 0 {
		limit = 10
	}
	path := fmt.Sprintf("/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		url.QueryEscape(strings.TrimSpace(query)), limit)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search: %w", err)
	}
	out := make([]model.FoodEstimate, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if e, ok := p.estimate(); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return []byte(`{"status":0}`), nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

type productResponse struct {
	Status  int     `json:"status"`
	Product product `json:"product"`
}

type searchResponse struct {
	Products []product `json:"products"`
}

type product struct {
	ProductName string         `json:"product_name"`
	Brands      string         `json:"brands"`
	ServingSize string         `json:"serving_size"`
	Nutriments  map[string]any `json:"nutriments"`
}

// estimate prefers per-serving values and falls back to per-100g, naming
// the basis so the user knows what one unit means.
func (p product) estimate() (model.FoodEstimate, bool) {
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		return model.FoodEstimate{}, false
	}
	if brand := firstBrand(p.Brands); brand != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(brand)) {
		name = brand + " " + name
	}
	suffix := "_serving"
	if _, ok := parseFloatAny(p.Nutriments["energy-kcal_serving"]); !ok {
		suffix = "_100g"
		name += " (100 g)"
	} else if s := strings.TrimSpace(p.ServingSize); s != "" {
		name += " (" + s + ")"
	}
	value := func(key string) float64 {
		v, _ := parseFloatAny(p.Nutriments[key+suffix])
		return v
	}
	return model.FoodEstimate{
		Name:     name,
		Calories: value("energy-kcal"),
		ProteinG: value("proteins"),
		CarbsG:   value("carbohydrates"),
		FatG:     value("fat"),
	}, true
}

func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
