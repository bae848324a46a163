package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicExtractor extracts review key points with the Anthropic Messages API.
type AnthropicExtractor struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewAnthropicExtractor creates an extractor with the given API key and model.
func NewAnthropicExtractor(apiKey, model string) *AnthropicExtractor {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicExtractor{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// ExtractKeyPoints sends the review to the model and returns newline-separated key points.
func (e *AnthropicExtractor) ExtractKeyPoints(ctx context.Context, review string) (string, error) {
	systemPrompt, userPrompt := buildKeyPointsPrompt(review)

	msg, err := e.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	points := cleanKeyPoints(text)
	if points == "" {
		return "", fmt.Errorf("no text content in API response")
	}
	return points, nil
}
