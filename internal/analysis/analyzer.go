package analysis

import (
	"context"

	"go.uber.org/zap"

	"github.com/joescharf/revu/internal/models"
)

// Fallback key point texts stored when extraction cannot run.
const (
	KeyPointsFailed        = "Failed to extract points."
	KeyPointsNotConfigured = "Key point extraction is not configured."
)

// Classifier assigns a sentiment label to text.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Sentiment, error)
}

// KeyPointExtractor summarizes text into newline-separated insight lines.
type KeyPointExtractor interface {
	ExtractKeyPoints(ctx context.Context, text string) (string, error)
}

// Analyzer runs both analysis services over a review. Service failures never
// fail the analysis; they degrade to fixed fallback values.
type Analyzer struct {
	sentiment Classifier
	points    KeyPointExtractor
	logger    *zap.Logger
}

// NewAnalyzer creates an analyzer. points may be nil when no provider is configured.
func NewAnalyzer(sentiment Classifier, points KeyPointExtractor, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{sentiment: sentiment, points: points, logger: logger}
}

// Analyze returns the sentiment and key points for text.
func (a *Analyzer) Analyze(ctx context.Context, text string) models.Analysis {
	out := models.Analysis{Sentiment: models.SentimentNeutral}

	if a.sentiment != nil {
		label, err := a.sentiment.Classify(ctx, text)
		if err != nil {
			a.logger.Warn("sentiment analysis failed, using neutral", zap.Error(err))
		} else if label != "" {
			out.Sentiment = label
		}
	}

	if a.points == nil {
		out.KeyPoints = KeyPointsNotConfigured
		return out
	}
	points, err := a.points.ExtractKeyPoints(ctx, text)
	if err != nil {
		a.logger.Warn("key point extraction failed", zap.Error(err))
		out.KeyPoints = KeyPointsFailed
		return out
	}
	out.KeyPoints = points
	return out
}
