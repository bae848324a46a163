package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiExtractor extracts review key points with the Gemini API.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates an extractor. The API key is required.
func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model}, nil
}

// ExtractKeyPoints sends the review to the model and returns newline-separated key points.
func (e *GeminiExtractor) ExtractKeyPoints(ctx context.Context, review string) (string, error) {
	systemPrompt, userPrompt := buildKeyPointsPrompt(review)

	resp, err := e.client.Models.GenerateContent(ctx,
		e.model,
		[]*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	points := cleanKeyPoints(resp.Text())
	if points == "" {
		return "", fmt.Errorf("no text content in gemini response")
	}
	return points, nil
}
