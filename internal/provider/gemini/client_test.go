package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"google.golang.org/genai"
)

// wireRequest mirrors the generateContent body the SDK sends.
type wireRequest struct {
	Contents []struct {
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string `json:"responseMimeType"`
		ResponseSchema   *struct {
			Type  string `json:"type"`
			Items *struct {
				Type     string   `json:"type"`
				Required []string `json:"required"`
			} `json:"items"`
		} `json:"responseSchema"`
	} `json:"generationConfig"`
}

func answer(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(b)
}

func TestFromImageSendsInlineDataAndParsesArray(t *testing.T) {
	t.Parallel()

	var got wireRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "demo" {
			t.Errorf("missing api key header")
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(answer(`[{"name":"Hummus","calories":250,"protein":8,"carbs":20,"fat":15},{"name":"Pita","calories":165,"protein":5.5,"carbs":33,"fat":0.7}]`)))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", Model: "gemini-test", BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.FromImage(context.Background(), []byte{1, 2, 3}, "image/png")
	if err != nil {
		t.Fatalf("from image: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Hummus" || items[1].CarbsG != 33 {
		t.Fatalf("unexpected items: %+v", items)
	}
	parts := got.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[0].InlineData.Data != "AQID" || parts[0].InlineData.MIMEType != "image/png" {
		t.Fatalf("unexpected request parts: %+v", parts)
	}
	if !strings.Contains(parts[1].Text, "name in English") {
		t.Fatalf("expected default language in prompt, got %q", parts[1].Text)
	}
	cfg := got.GenerationConfig
	if cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema == nil || cfg.ResponseSchema.Type != "ARRAY" {
		t.Fatalf("unexpected generation config: %+v", cfg)
	}
	if cfg.ResponseSchema.Items == nil || cfg.ResponseSchema.Items.Type != "OBJECT" || len(cfg.ResponseSchema.Items.Required) != 5 {
		t.Fatalf("unexpected item schema: %+v", cfg.ResponseSchema.Items)
	}
}

func TestFromTextZeroCaloriesIsNil(t *testing.T) {
	t.Parallel()

	replies := []string{
		answer(`{"name":"Lentil soup","calories":310,"protein":18,"carbs":45,"fat":6}`),
		answer(`{"name":"","calories":0,"protein":0,"carbs":0,"fat":0}`),
		`{"candidates":[]}`,
	}
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1) - 1
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(replies[n]))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client(), Language: "Hebrew"}
	item, err := c.FromText(context.Background(), "a bowl of lentil soup")
	if err != nil {
		t.Fatalf("from text: %v", err)
	}
	if item == nil || item.Calories != 310 || item.ProteinG != 18 {
		t.Fatalf("unexpected item: %+v", item)
	}
	for i := 0; i < 2; i++ {
		item, err = c.FromText(context.Background(), "qwerty")
		if err != nil || item != nil {
			t.Fatalf("expected nothing recognized, got %+v err=%v", item, err)
		}
	}
	if c.Scope() != "gemini-2.5-flash/Hebrew" {
		t.Fatalf("unexpected scope %q", c.Scope())
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer ts.Close()

	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.FromText(context.Background(), "toast")
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected a Gemini API error, got %v", err)
	}
	if apiErr.Code != http.StatusTooManyRequests || apiErr.Status != "RESOURCE_EXHAUSTED" {
		t.Fatalf("unexpected API error: %+v", apiErr)
	}

	noKey := &Client{BaseURL: ts.URL}
	if _, err := noKey.FromImage(context.Background(), []byte{1}, "image/jpeg"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
