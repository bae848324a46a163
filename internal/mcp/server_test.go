package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/revu/internal/models"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockReviews implements workflow.ReviewStore for testing.
type mockReviews struct {
	reviews   []models.Review
	submitted []models.Draft

	listErr   error
	submitErr error
}

func (m *mockReviews) ListReviews(_ context.Context) ([]models.Review, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.reviews, nil
}

func (m *mockReviews) SubmitReview(_ context.Context, d models.Draft) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, d)
	m.reviews = append([]models.Review{{
		ID:          "new",
		ProductName: d.ProductName,
		ReviewText:  d.ReviewText,
		Sentiment:   models.SentimentPositive,
		KeyPoints:   "- Fast\n- Cheap\n",
	}}, m.reviews...)
	return nil
}

func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestMCPServer_Creates(t *testing.T) {
	srv := NewServer(&mockReviews{}, "test")
	require.NotNil(t, srv.MCPServer())
}

func TestListReviews(t *testing.T) {
	m := &mockReviews{reviews: []models.Review{
		{ID: "2", ProductName: "Phone", Sentiment: models.SentimentNegative, KeyPoints: "- Slow\n"},
		{ID: "1", ProductName: "Laptop", Sentiment: models.SentimentPositive, KeyPoints: "- Fast\n- Light"},
	}}
	srv := NewServer(m, "test")

	result, err := srv.handleListReviews(context.Background(), callToolReq("revu_list_reviews", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out []reviewOut
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "2", out[0].ID)
	assert.Equal(t, []string{"- Slow"}, out[0].KeyPoints)
	assert.Equal(t, []string{"- Fast", "- Light"}, out[1].KeyPoints)
}

func TestListReviews_Limit(t *testing.T) {
	m := &mockReviews{reviews: []models.Review{{ID: "3"}, {ID: "2"}, {ID: "1"}}}
	srv := NewServer(m, "test")

	result, err := srv.handleListReviews(context.Background(), callToolReq("revu_list_reviews", map[string]any{"limit": float64(1)}))
	require.NoError(t, err)

	var out []reviewOut
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "3", out[0].ID)
}

func TestListReviews_Error(t *testing.T) {
	srv := NewServer(&mockReviews{listErr: errors.New("connection refused")}, "test")

	result, err := srv.handleListReviews(context.Background(), callToolReq("revu_list_reviews", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "connection refused")
}

func TestAnalyzeReview(t *testing.T) {
	m := &mockReviews{}
	srv := NewServer(m, "test")

	result, err := srv.handleAnalyzeReview(context.Background(), callToolReq("revu_analyze_review", map[string]any{
		"product_name": "Laptop X",
		"review_text":  "Great",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, []models.Draft{{ProductName: "Laptop X", ReviewText: "Great"}}, m.submitted)

	var out reviewOut
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "new", out.ID)
	assert.Equal(t, "positive", out.Sentiment)
	assert.Equal(t, []string{"- Fast", "- Cheap"}, out.KeyPoints)
}

func TestAnalyzeReview_MissingArgs(t *testing.T) {
	srv := NewServer(&mockReviews{}, "test")

	result, err := srv.handleAnalyzeReview(context.Background(), callToolReq("revu_analyze_review", map[string]any{
		"product_name": "Laptop X",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "should error when review_text is missing")
	assert.Contains(t, resultText(t, result), "review_text")
}

func TestAnalyzeReview_SubmitError(t *testing.T) {
	srv := NewServer(&mockReviews{submitErr: errors.New("status 500")}, "test")

	result, err := srv.handleAnalyzeReview(context.Background(), callToolReq("revu_analyze_review", map[string]any{
		"product_name": "a",
		"review_text":  "b",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "status 500")
}
