package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joescharf/revu/internal/analysis"
	"github.com/joescharf/revu/internal/client"
	"github.com/joescharf/revu/internal/llm"
	"github.com/joescharf/revu/internal/store"
)

// newReviewClient creates the backend client from the resolved api_url.
func newReviewClient() *client.Client {
	return client.New(viper.GetString("api_url"))
}

// sessionTTL parses ui.session_ttl, falling back to 30 minutes.
func sessionTTL() time.Duration {
	d, err := time.ParseDuration(viper.GetString("ui.session_ttl"))
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

// openStore opens and migrates the SQLite database at db_path.
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(viper.GetString("db_path"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// configString reads a config key, falling back to a provider's conventional env var.
func configString(key, envVar string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(envVar)
}

// newKeyPointExtractor returns the configured extractor, or nil if none is usable.
func newKeyPointExtractor(ctx context.Context) (analysis.KeyPointExtractor, error) {
	switch provider := strings.ToLower(viper.GetString("keypoints.provider")); provider {
	case "gemini":
		key := configString("gemini.api_key", "GEMINI_API_KEY")
		if key == "" {
			return nil, nil
		}
		e, err := llm.NewGeminiExtractor(ctx, key, viper.GetString("gemini.model"))
		if err != nil {
			return nil, err
		}
		return e, nil
	case "anthropic":
		key := configString("anthropic.api_key", "ANTHROPIC_API_KEY")
		if key == "" {
			return nil, nil
		}
		return llm.NewAnthropicExtractor(key, viper.GetString("anthropic.model")), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown keypoints.provider %q (want gemini, anthropic, or none)", provider)
	}
}

// newAnalyzer wires the sentiment classifier and key point extractor.
func newAnalyzer(ctx context.Context) (*analysis.Analyzer, error) {
	points, err := newKeyPointExtractor(ctx)
	if err != nil {
		return nil, err
	}
	if points == nil {
		ui.Warning("No key point provider configured; reviews will be stored without key points")
	}

	token := configString("huggingface.token", "HF_API_TOKEN")
	if token == "" {
		ui.Warning("HuggingFace token not set; every review will be labeled neutral")
	}
	sentiment := analysis.NewHFClassifier(viper.GetString("huggingface.url"), token, nil)

	return analysis.NewAnalyzer(sentiment, points, logger.Named("analysis")), nil
}
