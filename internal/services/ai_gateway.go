package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/saeid-a/NutriScanBack/internal/models"
	"github.com/saeid-a/NutriScanBack/internal/nutrition"
)

const classifyPrompt = `You are a nutrition expert specializing in Indian food. Analyze food images and return JSON with nutrition info.

Return ONLY valid JSON in this format:
{
  "food_name": "name of the dish",
  "serving_size": "estimated portion size",
  "calories": number,
  "protein_g": number,
  "carbs_g": number,
  "fat_g": number,
  "fiber_g": number,
  "confidence": "high/medium/low"
}

Focus on Indian foods like roti, dal, rice, sabzi, dosa, idli, biryani, paneer dishes, etc.
Be accurate with typical portion sizes.`

const suggestPrompt = `You are a nutrition expert specializing in Indian cuisine. Generate meal suggestions that help users meet their remaining daily nutritional goals.

Return a JSON object with a "suggestions" array containing 5-6 meal suggestions. Each suggestion must have:
- name: Indian dish name
- calories: approximate calories (number)
- protein_g: protein in grams (number)
- carbs_g: carbs in grams (number)
- fat_g: fat in grams (number)
- description: brief description of the dish (1-2 sentences)
- meal_type: one of "breakfast", "lunch", "dinner", or "snack"

Make sure the combined nutritional values of all suggested meals approximately equal the remaining goals.
Distribute meals across different meal types.`

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

type FoodClassifier interface {
	Classify(ctx context.Context, image []byte) (*models.FoodAnalysis, error)
}

type MealSuggester interface {
	Suggest(ctx context.Context, remaining nutrition.Remaining) ([]models.MealSuggestion, error)
}

// AIGatewayClient talks to an OpenAI compatible chat completions endpoint.
type AIGatewayClient struct {
	endpoint        string
	apiKey          string
	visionModel     string
	suggestionModel string
	httpClient      *http.Client
}

func NewAIGatewayClient(endpoint, apiKey, visionModel, suggestionModel string) *AIGatewayClient {
	return &AIGatewayClient{
		endpoint:        endpoint,
		apiKey:          apiKey,
		visionModel:     visionModel,
		suggestionModel: suggestionModel,
		httpClient:      &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *AIGatewayClient) Classify(ctx context.Context, image []byte) (*models.FoodAnalysis, error) {
	dataURI := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
	content, err := c.complete(ctx, chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: classifyPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Analyze this food image and provide nutrition information in JSON format."},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
			}},
		},
	})
	if err != nil {
		return nil, err
	}

	var analysis models.FoodAnalysis
	if err := decodeEmbeddedJSON(content, &analysis); err != nil {
		return nil, err
	}
	if strings.TrimSpace(analysis.FoodName) == "" {
		return nil, fmt.Errorf("%w: no food recognised", ErrClassifierUnavailable)
	}
	return &analysis, nil
}

func (c *AIGatewayClient) Suggest(ctx context.Context, remaining nutrition.Remaining) ([]models.MealSuggestion, error) {
	userPrompt := fmt.Sprintf(`Generate Indian meal suggestions to help meet these remaining daily goals:
- Calories: %.0f cal
- Protein: %.0fg
- Carbs: %.0fg
- Fat: %.0fg

Return only valid JSON with the suggestions array.`, remaining.Calories, remaining.Protein, remaining.Carbs, remaining.Fat)

	content, err := c.complete(ctx, chatRequest{
		Model: c.suggestionModel,
		Messages: []chatMessage{
			{Role: "system", Content: suggestPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Suggestions []models.MealSuggestion `json:"suggestions"`
	}
	if err := decodeEmbeddedJSON(content, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

func (c *AIGatewayClient) complete(ctx context.Context, payload chatRequest) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: AI_GATEWAY_KEY not configured", ErrClassifierUnavailable)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return "", ErrRateLimited
	case http.StatusPaymentRequired:
		return "", ErrUpstreamPayment
	}
	if err := checkStatus(resp, "ai gateway"); err != nil {
		return "", fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}

	var decoded chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrClassifierUnavailable, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrClassifierUnavailable)
	}
	return decoded.Choices[0].Message.Content, nil
}

// decodeEmbeddedJSON extracts the outermost JSON object from model output
// that may be wrapped in prose or code fences.
func decodeEmbeddedJSON(content string, v any) error {
	match := jsonObject.FindString(content)
	if match == "" {
		return fmt.Errorf("%w: could not parse nutrition data", ErrClassifierUnavailable)
	}
	if err := json.Unmarshal([]byte(match), v); err != nil {
		return errors.Join(ErrClassifierUnavailable, err)
	}
	return nil
}
