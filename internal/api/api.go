package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/joescharf/revu/internal/models"
	"github.com/joescharf/revu/internal/store"
)

// Analyzer produces the AI annotations for a review text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) models.Analysis
}

// Server provides the review analysis REST API.
type Server struct {
	store    store.Store
	analyzer Analyzer
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit caps analysis requests to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(s *Server) {
		if r > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(r), burst)
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new API server.
func NewServer(s store.Store, a Analyzer, opts ...Option) *Server {
	srv := &Server{
		store:    s,
		analyzer: a,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/reviews", s.listReviews)
	mux.HandleFunc("POST /api/analyze-review", s.analyzeReview)
	mux.HandleFunc("GET /api/health", s.health)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Reviews ---

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.store.ListReviews(r.Context())
	if err != nil {
		s.logger.Error("list reviews", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reviews == nil {
		reviews = []*models.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) analyzeReview(w http.ResponseWriter, r *http.Request) {
	var d models.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(d.ProductName) == "" || strings.TrimSpace(d.ReviewText) == "" {
		writeError(w, http.StatusBadRequest, "product_name and review_text are required")
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many analysis requests, try again shortly")
		return
	}

	s.logger.Info("analyzing review", zap.String("product", d.ProductName))
	result := s.analyzer.Analyze(r.Context(), d.ReviewText)
	s.logger.Debug("analysis complete", zap.String("sentiment", string(result.Sentiment)))

	review := &models.Review{
		ProductName: d.ProductName,
		ReviewText:  d.ReviewText,
		Sentiment:   result.Sentiment,
		KeyPoints:   result.KeyPoints,
	}
	if err := s.store.CreateReview(r.Context(), review); err != nil {
		s.logger.Error("store review", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
