package store

import (
	"context"

	"github.com/joescharf/revu/internal/models"
)

// Store defines the persistence interface for analyzed reviews.
type Store interface {
	CreateReview(ctx context.Context, r *models.Review) error
	// ListReviews returns all reviews, newest first.
	ListReviews(ctx context.Context) ([]*models.Review, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
