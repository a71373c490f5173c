// Package gemini estimates nutrition from meal photos and descriptions with
// the Gemini API and a JSON response schema.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/izikbr/calorific2-app/internal/model"
)

const (
	defaultModel    = "gemini-2.5-flash"
	defaultLanguage = "English"
)

var ErrMissingAPIKey = errors.New("missing Gemini API key (set gemini.api_key or GEMINI_API_KEY)")

type Client struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint; empty uses the SDK default.
	BaseURL    string
	Language   string
	HTTPClient *http.Client
}

// Scope identifies the model and language for cache keys.
func (c *Client) Scope() string {
	return c.model() + "/" + c.language()
}

// FromImage lists every food item visible in the photo. An empty slice means
// nothing edible was recognized.
func (c *Client) FromImage(ctx context.Context, image []byte, mimeType string) ([]model.FoodEstimate, error) {
	prompt := fmt.Sprintf(`Analyze the image and identify all distinct food items present.
For each item, provide an estimated nutritional breakdown (calories, protein, carbs, fat).
Return the data as a JSON array of objects with the properties "name" (string), "calories" (number), "protein" (number), "carbs" (number), "fat" (number).
If no food is identifiable, return an empty array.
Provide the name in %s.`, c.language())
	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(prompt),
	}
	text, err := c.generate(ctx, parts, &genai.Schema{Type: genai.TypeArray, Items: foodSchema()})
	if err != nil {
		return nil, err
	}
	if text == "" {
		return []model.FoodEstimate{}, nil
	}
	var items []model.FoodEstimate
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("decode Gemini image answer: %w", err)
	}
	if items == nil {
		items = []model.FoodEstimate{}
	}
	return items, nil
}

// FromText estimates the whole described meal as one record. It returns nil
// when the model could not put a calorie figure on it.
func (c *Client) FromText(ctx context.Context, description string) (*model.FoodEstimate, error) {
	prompt := fmt.Sprintf(`Analyze the following food description: %q.
Provide an estimated nutritional breakdown for the entire meal described (calories, protein, carbs, fat).
Return the data as a single JSON object with the properties "name" (string, summarizing the meal in %s), "calories" (number), "protein" (number), "carbs" (number), "fat" (number).
If you cannot determine the nutritional information from the query, the values should be 0.`, description, c.language())
	text, err := c.generate(ctx, []*genai.Part{genai.NewPartFromText(prompt)}, foodSchema())
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	var item model.FoodEstimate
	if err := json.Unmarshal([]byte(text), &item); err != nil {
		return nil, fmt.Errorf("decode Gemini text answer: %w", err)
	}
	if strings.TrimSpace(item.Name) == "" || item.Calories <= 0 {
		return nil, nil
	}
	return &item, nil
}

func (c *Client) generate(ctx context.Context, parts []*genai.Part, schema *genai.Schema) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrMissingAPIKey
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: strings.TrimSpace(c.BaseURL)},
	})
	if err != nil {
		return "", fmt.Errorf("create Gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, c.model(),
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		})
	if err != nil {
		return "", fmt.Errorf("Gemini generateContent: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("Gemini blocked the request: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func (c *Client) model() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return defaultModel
}

func (c *Client) language() string {
	if l := strings.TrimSpace(c.Language); l != "" {
		return l
	}
	return defaultLanguage
}

func foodSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":     {Type: genai.TypeString},
			"calories": {Type: genai.TypeNumber},
			"protein":  {Type: genai.TypeNumber},
			"carbs":    {Type: genai.TypeNumber},
			"fat":      {Type: genai.TypeNumber},
		},
		Required: []string{"name", "calories", "protein", "carbs", "fat"},
	}
}
