package workflow

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/joescharf/revu/internal/form"
	"github.com/joescharf/revu/internal/models"
)

// User-facing messages, one per call site.
const (
	FetchFailedMessage  = "Could not reach the review backend. Make sure the server is running!"
	SubmitFailedMessage = "Review analysis failed. Check the server logs."
)

var (
	// ErrSubmitInProgress is returned when Submit is called while another submission is in flight.
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrClosed is returned by operations on a session that has been unmounted.
	ErrClosed = errors.New("session closed")
)

// ReviewStore is the remote backend the workflow drives.
type ReviewStore interface {
	ListReviews(ctx context.Context) ([]models.Review, error)
	SubmitReview(ctx context.Context, draft models.Draft) error
}

// State is what the view renders. Error is empty when no error is shown.
type State struct {
	Reviews []models.Review
	Loading bool
	Error   string
}

type errorSource int

const (
	errorNone errorSource = iota
	errorFetch
	errorSubmit
)

// Session owns the UI state and the draft for one mounted page.
//
// The review list is replaced wholesale by each successful fetch and is
// never merged with a create response: after a successful submission the
// list is always re-fetched so the backend stays the single source of truth.
type Session struct {
	store  ReviewStore
	logger *zap.Logger

	mu         sync.Mutex
	form       *form.Controller
	state      State
	errSource  errorSource
	submitting bool
	closed     bool
}

// NewSession creates an unmounted session. Call Mount to load the list.
func NewSession(store ReviewStore, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store:  store,
		logger: logger,
		form:   form.New(),
	}
}

// Mount performs the initial list fetch.
func (s *Session) Mount(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh re-fetches the review list. On failure the previous list is kept
// and the fetch error message is shown.
func (s *Session) Refresh(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}

	reviews, err := s.store.ListReviews(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Warn("list reviews failed", zap.Error(err))
		s.state.Error = FetchFailedMessage
		s.errSource = errorFetch
		return err
	}

	s.state.Reviews = reviews
	if s.errSource == errorFetch {
		s.state.Error = ""
		s.errSource = errorNone
	}
	s.logger.Debug("reviews loaded", zap.Int("count", len(reviews)))
	return nil
}

// UpdateDraft sets one draft field.
func (s *Session) UpdateDraft(field form.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.form.Update(field, value)
}

// ResetDraft clears the draft.
func (s *Session) ResetDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Reset()
}

// Draft returns the current draft.
func (s *Session) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Draft()
}

// Submit sends the current draft for analysis.
//
// The error banner is cleared and Loading set before the call. On success
// the draft is reset and the list re-fetched; on failure the draft is kept
// so the user does not lose their input. A second Submit while one is in
// flight returns ErrSubmitInProgress without touching state.
func (s *Session) Submit(ctx context.Context) error {
	return s.submit(ctx, nil)
}

// SubmitDraft replaces the draft with d and submits it. The replacement
// and the in-flight check happen under one lock, so a rejected call
// leaves the pending draft alone.
func (s *Session) SubmitDraft(ctx context.Context, d models.Draft) error {
	return s.submit(ctx, &d)
}

func (s *Session) submit(ctx context.Context, override *models.Draft) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitInProgress
	}
	if override != nil {
		_ = s.form.Update(form.FieldProductName, override.ProductName)
		_ = s.form.Update(form.FieldReviewText, override.ReviewText)
	}
	s.submitting = true
	s.state.Error = ""
	s.errSource = errorNone
	s.state.Loading = true
	draft := s.form.Draft()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.Loading = false
		s.submitting = false
		s.mu.Unlock()
	}()

	if err := s.store.SubmitReview(ctx, draft); err != nil {
		s.logger.Warn("submit review failed", zap.String("product", draft.ProductName), zap.Error(err))
		s.mu.Lock()
		s.state.Error = SubmitFailedMessage
		s.errSource = errorSubmit
		s.mu.Unlock()
		return err
	}

	s.logger.Info("review submitted", zap.String("product", draft.ProductName))
	s.ResetDraft()

	// The submission itself succeeded; a failed re-list only sets the fetch banner.
	_ = s.Refresh(ctx)
	return nil
}

// Snapshot returns copies of the state and draft for rendering.
func (s *Session) Snapshot() (State, models.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Reviews = slices.Clone(s.state.Reviews)
	return st, s.form.Draft()
}

// Close unmounts the session. Later operations return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.state = State{}
	s.form.Reset()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
