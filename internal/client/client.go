package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/joescharf/revu/internal/models"
)

// Kind distinguishes transport failures from unsuccessful responses.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against *Error.
var (
	ErrNetwork = errors.New("network error")
	ErrServer  = errors.New("server error")
)

// Error describes a failed call against the review backend.
type Error struct {
	Kind       Kind
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s error: status %d", e.Op, e.URL, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %s error: %v", e.Op, e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel matching this error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// Client talks to the review analysis backend. Each call makes exactly one
// attempt; there are no retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the backend rooted at baseURL (e.g. http://127.0.0.1:8000/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// ListReviews fetches all analyzed reviews in the order the backend returns them.
func (c *Client) ListReviews(ctx context.Context) ([]models.Review, error) {
	const op = "list reviews"
	url := c.baseURL + "/reviews"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindServer, Op: op, URL: url, StatusCode: resp.StatusCode}
	}

	var reviews []models.Review
	if err := json.NewDecoder(resp.Body).Decode(&reviews); err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}
	return reviews, nil
}

// SubmitReview sends a draft for analysis. The created review is not
// returned; callers re-list to observe it.
func (c *Client) SubmitReview(ctx context.Context, draft models.Draft) error {
	const op = "submit review"
	url := c.baseURL + "/analyze-review"

	body, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindServer, Op: op, URL: url, StatusCode: resp.StatusCode}
	}
	return nil
}
