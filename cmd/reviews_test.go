package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/revu/internal/client"
	"github.com/joescharf/revu/internal/models"
	"github.com/joescharf/revu/internal/view"
)

// memBackend is an in-memory stand-in for 'revu api'.
type memBackend struct {
	mu         sync.Mutex
	reviews    []models.Review
	failSubmit bool
}

func (b *memBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reviews", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.reviews)
	})
	mux.HandleFunc("POST /analyze-review", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.failSubmit {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var d models.Draft
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rv := models.Review{
			ID:          models.ID("r" + string(rune('0'+len(b.reviews)))),
			ProductName: d.ProductName,
			ReviewText:  d.ReviewText,
			Sentiment:   models.SentimentPositive,
			KeyPoints:   "- Sharp display\n- Long battery",
		}
		b.reviews = append([]models.Review{rv}, b.reviews...)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rv)
	})
	return mux
}

func newReviewsEnv(t *testing.T, b *memBackend) (*client.Client, *bytes.Buffer) {
	t.Helper()
	testEnv(t)

	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	ui.Out = &out
	ui.ErrOut = &out
	reviewsJSON = false
	t.Cleanup(func() { reviewsJSON = false })

	return client.New(srv.URL, client.WithHTTPClient(srv.Client())), &out
}

func TestReviewsList_Empty(t *testing.T) {
	rc, out := newReviewsEnv(t, &memBackend{})

	require.NoError(t, reviewsListRun(t.Context(), rc))
	assert.Contains(t, out.String(), view.Heading(0))
	assert.Contains(t, out.String(), view.EmptyMessage)
}

func TestReviewsList_Table(t *testing.T) {
	b := &memBackend{reviews: []models.Review{
		{ID: "01A", ProductName: "Laptop X", ReviewText: "Great", Sentiment: models.SentimentPositive, KeyPoints: "- Fast\n- Light"},
	}}
	rc, out := newReviewsEnv(t, b)

	require.NoError(t, reviewsListRun(t.Context(), rc))
	assert.Contains(t, out.String(), view.Heading(1))
	assert.Contains(t, out.String(), "Laptop X")
	assert.Contains(t, out.String(), "(+1)")
}

func TestReviewsList_JSON(t *testing.T) {
	b := &memBackend{reviews: []models.Review{{ID: "01A", ProductName: "Phone"}}}
	rc, out := newReviewsEnv(t, b)
	reviewsJSON = true

	require.NoError(t, reviewsListRun(t.Context(), rc))

	var got []models.Review
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Phone", got[0].ProductName)
}

func TestReviewsList_BackendDown(t *testing.T) {
	testEnv(t)
	rc := client.New("http://127.0.0.1:1")

	err := reviewsListRun(t.Context(), rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not reach the review backend")
}

func TestReviewsSubmit(t *testing.T) {
	b := &memBackend{}
	rc, out := newReviewsEnv(t, b)

	require.NoError(t, reviewsSubmitRun(t.Context(), rc, "Laptop X", "Great screen"))
	assert.Contains(t, out.String(), view.Heading(1))
	assert.Contains(t, out.String(), "Laptop X")
	require.Len(t, b.reviews, 1)
}

func TestReviewsSubmit_Failure(t *testing.T) {
	b := &memBackend{failSubmit: true}
	rc, _ := newReviewsEnv(t, b)

	err := reviewsSubmitRun(t.Context(), rc, "Laptop X", "Great screen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Review analysis failed")
}

func TestReviewsSubmit_DryRun(t *testing.T) {
	b := &memBackend{}
	rc, out := newReviewsEnv(t, b)
	dryRun = true
	ui.DryRun = true
	defer func() { dryRun = false }()

	require.NoError(t, reviewsSubmitRun(t.Context(), rc, "Laptop X", "Great screen"))
	assert.Empty(t, b.reviews)
	assert.Contains(t, out.String(), `"Laptop X" (12 chars)`)
}
