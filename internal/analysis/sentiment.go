package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/joescharf/revu/internal/models"
)

// DefaultHFURL is the hosted multilingual sentiment model.
const DefaultHFURL = "https://router.huggingface.co/hf-inference/models/lxyuan/distilbert-base-multilingual-cased-sentiments-student"

// HFClassifier labels text using a HuggingFace text-classification endpoint.
type HFClassifier struct {
	url   string
	token string
	http  *http.Client
}

// NewHFClassifier creates a classifier. An empty url uses DefaultHFURL.
func NewHFClassifier(url, token string, hc *http.Client) *HFClassifier {
	if url == "" {
		url = DefaultHFURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HFClassifier{url: url, token: token, http: hc}
}

type hfLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest-scoring label for text.
func (c *HFClassifier) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	if c.token == "" {
		return "", fmt.Errorf("huggingface token not configured")
	}

	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("huggingface status %d", resp.StatusCode)
	}

	return parseHFResponse(data)
}

// parseHFResponse picks the best label from a [[{label, score}, ...]] body.
// A cold model answers with {"error": "..."} instead.
func parseHFResponse(data []byte) (models.Sentiment, error) {
	var loading struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &loading); err == nil && loading.Error != "" {
		return "", fmt.Errorf("huggingface model unavailable: %s", loading.Error)
	}

	var batches [][]hfLabel
	if err := json.Unmarshal(data, &batches); err != nil {
		return "", fmt.Errorf("unexpected huggingface response: %w", err)
	}
	if len(batches) == 0 || len(batches[0]) == 0 {
		return "", fmt.Errorf("empty huggingface response")
	}

	best := batches[0][0]
	for _, l := range batches[0][1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return models.Sentiment(strings.ToLower(best.Label)), nil
}
