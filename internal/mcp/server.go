package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/revu/internal/models"
	"github.com/joescharf/revu/internal/view"
	"github.com/joescharf/revu/internal/workflow"
)

// Server exposes the review backend as MCP tools.
type Server struct {
	reviews workflow.ReviewStore
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(reviews workflow.ReviewStore, version string) *Server {
	return &Server{reviews: reviews, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("revu", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listReviewsTool())
	srv.AddTool(s.analyzeReviewTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

type reviewOut struct {
	ID          string   `json:"id"`
	ProductName string   `json:"product_name"`
	ReviewText  string   `json:"review_text"`
	Sentiment   string   `json:"sentiment"`
	KeyPoints   []string `json:"key_points"`
}

func toOut(r models.Review) reviewOut {
	return reviewOut{
		ID:          string(r.ID),
		ProductName: r.ProductName,
		ReviewText:  r.ReviewText,
		Sentiment:   string(r.Sentiment),
		KeyPoints:   view.KeyPointLines(r.KeyPoints),
	}
}

// revu_list_reviews
func (s *Server) listReviewsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("revu_list_reviews",
		mcp.WithDescription("List analyzed product reviews, newest first. Returns a JSON array with id, product_name, review_text, sentiment, and key_points."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of reviews to return (default: all)")),
	)
	return tool, s.handleListReviews
}

func (s *Server) handleListReviews(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 0)

	reviews, err := s.reviews.ListReviews(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reviews: %v", err)), nil
	}
	if limit > 0 && limit < len(reviews) {
		reviews = reviews[:limit]
	}

	out := make([]reviewOut, len(reviews))
	for i, r := range reviews {
		out[i] = toOut(r)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal reviews: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// revu_analyze_review
func (s *Server) analyzeReviewTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("revu_analyze_review",
		mcp.WithDescription("Submit a product review for sentiment and key point analysis. Returns the stored review once analysis completes."),
		mcp.WithString("product_name", mcp.Required(), mcp.Description("Name of the reviewed product")),
		mcp.WithString("review_text", mcp.Required(), mcp.Description("Full review text")),
	)
	return tool, s.handleAnalyzeReview
}

func (s *Server) handleAnalyzeReview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	product, err := request.RequireString("product_name")
	if err != nil || product == "" {
		return mcp.NewToolResultError("missing required parameter: product_name"), nil
	}
	text, err := request.RequireString("review_text")
	if err != nil || text == "" {
		return mcp.NewToolResultError("missing required parameter: review_text"), nil
	}

	draft := models.Draft{ProductName: product, ReviewText: text}
	if err := s.reviews.SubmitReview(ctx, draft); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze review: %v", err)), nil
	}

	// The backend is the source of truth: re-list and report what it stored.
	reviews, err := s.reviews.ListReviews(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("review submitted but listing failed: %v", err)), nil
	}
	for _, r := range reviews {
		if r.ProductName == product && r.ReviewText == text {
			data, err := json.Marshal(toOut(r))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to marshal review: %v", err)), nil
			}
			return mcp.NewToolResultText(string(data)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("Review for %q submitted.", product)), nil
}
