package view

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joescharf/revu/internal/models"
)

const (
	Title        = "AI Product Review Analyzer"
	Subtitle     = "Powered by HuggingFace (Sentiment) & Gemini (Key Points)"
	EmptyMessage = "No reviews yet. Be the first!"
	SubmitLabel  = "Analyze Review"
	LoadingLabel = "Analyzing..."
	InsightLabel = "AI Insights:"
)

// Page is everything the renderer needs.
type Page struct {
	Reviews []models.Review
	Draft   models.Draft
	Loading bool
	Error   string
}

// Render maps a page to a complete HTML document tree. It has no side effects.
func Render(p Page) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := el(atom.Head, nil,
		el(atom.Meta, attrs("charset", "utf-8")),
		el(atom.Meta, attrs("name", "viewport", "content", "width=device-width, initial-scale=1")),
		el(atom.Title, nil, text(Title)),
		el(atom.Link, attrs("rel", "stylesheet", "href", "/static/app.css")),
	)

	container := el(atom.Div, attrs("class", "container"), header())
	if p.Error != "" {
		container.AppendChild(el(atom.Div, attrs("class", "error-banner", "role", "alert"), text(p.Error)))
	}
	container.AppendChild(draftForm(p.Draft, p.Loading))
	container.AppendChild(el(atom.Hr, attrs("class", "divider")))
	container.AppendChild(results(p.Reviews))

	body := el(atom.Body, nil,
		container,
		el(atom.Script, attrs("src", "/static/app.js", "defer", "")),
	)

	doc.AppendChild(el(atom.Html, attrs("lang", "en"), head, body))
	return doc
}

// Write serializes a rendered tree.
func Write(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// KeyPointLines splits key points on newlines, dropping empty segments.
func KeyPointLines(keyPoints string) []string {
	var lines []string
	for _, line := range strings.Split(keyPoints, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Heading returns the results heading for n reviews.
func Heading(n int) string {
	return fmt.Sprintf("Recent Reviews (%d)", n)
}

func header() *html.Node {
	return el(atom.Header, attrs("class", "header"),
		el(atom.H1, nil, text(Title)),
		el(atom.P, nil, text(Subtitle)),
	)
}

func draftForm(d models.Draft, loading bool) *html.Node {
	button := el(atom.Button, attrs("type", "submit", "class", "btn-submit"), text(SubmitLabel))
	if loading {
		button.Attr = append(button.Attr, html.Attribute{Key: "disabled"})
		button.FirstChild.Data = LoadingLabel
	}

	f := el(atom.Form, attrs("method", "post", "action", "/submit", "id", "review-form"),
		el(atom.Div, attrs("class", "form-group"),
			el(atom.Label, attrs("for", "product_name"), text("Product Name")),
			el(atom.Input, attrs(
				"type", "text",
				"id", "product_name",
				"name", "product_name",
				"placeholder", "e.g. ROG Gaming Laptop",
				"value", d.ProductName,
				"required", "",
			)),
		),
		el(atom.Div, attrs("class", "form-group"),
			el(atom.Label, attrs("for", "review_text"), text("Your Review")),
			el(atom.Textarea, attrs(
				"id", "review_text",
				"name", "review_text",
				"placeholder", "Write your honest review here...",
				"rows", "4",
				"required", "",
			), text(d.ReviewText)),
		),
		button,
	)
	return el(atom.Div, attrs("class", "card form-card"), f)
}

func results(reviews []models.Review) *html.Node {
	section := el(atom.Div, attrs("class", "results-section"),
		el(atom.H2, nil, text(Heading(len(reviews)))),
	)
	if len(reviews) == 0 {
		section.AppendChild(el(atom.P, attrs("class", "empty-state"), text(EmptyMessage)))
	}

	grid := el(atom.Div, attrs("class", "review-grid"))
	for _, r := range reviews {
		grid.AppendChild(card(r))
	}
	section.AppendChild(grid)
	return section
}

func card(r models.Review) *html.Node {
	points := el(atom.Div, attrs("class", "points"))
	for _, line := range KeyPointLines(r.KeyPoints) {
		points.AppendChild(el(atom.Div, nil, text(line)))
	}

	return el(atom.Div, attrs("class", "review-card", "data-id", string(r.ID)),
		el(atom.Div, attrs("class", "review-header"),
			el(atom.H3, nil, text(r.ProductName)),
			el(atom.Span, attrs("class", "badge "+string(r.Sentiment)), text(string(r.Sentiment))),
		),
		el(atom.P, attrs("class", "review-text"), text(`"`+r.ReviewText+`"`)),
		el(atom.Div, attrs("class", "ai-insight"),
			el(atom.Strong, nil, text(InsightLabel)),
			points,
		),
	)
}

func el(a atom.Atom, as []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: as}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// attrs builds attributes from alternating key/value pairs.
func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}
