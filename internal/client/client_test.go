package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/revu/internal/models"
)

func TestListReviews_PreservesServerOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/reviews", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"3","product_name":"C","review_text":"meh","sentiment":"neutral","key_points":"ok"},
			{"id":"1","product_name":"A","review_text":"great","sentiment":"positive","key_points":"Fast\nCheap\n"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	got, err := c.ListReviews(context.Background())
	require.NoError(t, err)

	want := []models.Review{
		{ID: "3", ProductName: "C", ReviewText: "meh", Sentiment: models.SentimentNeutral, KeyPoints: "ok"},
		{ID: "1", ProductName: "A", ReviewText: "great", Sentiment: models.SentimentPositive, KeyPoints: "Fast\nCheap\n"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListReviews mismatch (-want +got):\n%s", diff)
	}
}

func TestListReviews_IntegerIDsAndNaiveTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":2,"product_name":"Phone","review_text":"Battery dies fast","sentiment":"Negative","key_points":"- Weak battery","created_at":"2025-01-02T03:04:05.123456"},
			{"id":1,"product_name":"Laptop","review_text":"Love it","sentiment":"Positive","key_points":null,"created_at":"2025-01-01T10:00:00"}
		]`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).ListReviews(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.ID("2"), got[0].ID)
	assert.Equal(t, models.Sentiment("Negative"), got[0].Sentiment)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC), got[0].CreatedAt.Time)
	assert.Equal(t, models.ID("1"), got[1].ID)
	assert.Empty(t, got[1].KeyPoints)
}

func TestListReviews_UnparseableTimestampIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a","product_name":"X","created_at":"yesterday"},{"id":"b","created_at":null}]`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).ListReviews(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.IsZero())
	assert.True(t, got[1].CreatedAt.IsZero())
}

func TestListReviews_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListReviews(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServer))
	assert.False(t, errors.Is(err, ErrNetwork))

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusInternalServerError, cerr.StatusCode)
}

func TestListReviews_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).ListReviews(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestListReviews_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListReviews(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestSubmitReview_PostsDraft(t *testing.T) {
	var got models.Draft
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze-review", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"ignored"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).SubmitReview(context.Background(), models.Draft{ProductName: "Laptop X", ReviewText: "Great"})
	require.NoError(t, err)
	assert.Equal(t, models.Draft{ProductName: "Laptop X", ReviewText: "Great"}, got)
}

func TestSubmitReview_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).SubmitReview(context.Background(), models.Draft{ProductName: "x", ReviewText: "y"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServer))
	assert.Contains(t, err.Error(), "status 502")
}

func TestSubmitReview_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_ = New(srv.URL).SubmitReview(context.Background(), models.Draft{})
	assert.Equal(t, 1, calls)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://127.0.0.1:8000/api/")
	assert.Equal(t, "http://127.0.0.1:8000/api", c.BaseURL())
}
