package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Sentiment is the categorical label an analysis service attaches to a review.
// Labels outside the known constants are kept as-is.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ID identifies a review. Backends send it as a JSON string or number.
type ID string

// UnmarshalJSON accepts "01J..." and 42 alike. null leaves the ID empty.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// timestampLayouts are tried in order. The naive layouts cover backends that
// serialize UTC without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a creation time that decodes leniently: an offset-less value
// is read as UTC and an unrecognized one is left zero.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON fails only on non-string JSON. null and unknown formats yield the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}

// Review is a persisted product review with its AI-derived annotations.
// KeyPoints is newline-delimited free text.
type Review struct {
	ID          ID        `json:"id"`
	ProductName string    `json:"product_name"`
	ReviewText  string    `json:"review_text"`
	Sentiment   Sentiment `json:"sentiment"`
	KeyPoints   string    `json:"key_points"`
	CreatedAt   Timestamp `json:"created_at,omitzero"`
}

// Draft is the unsaved form input sent for analysis.
type Draft struct {
	ProductName string `json:"product_name"`
	ReviewText  string `json:"review_text"`
}

// Analysis is the result of running a review text through the analysis services.
type Analysis struct {
	Sentiment Sentiment
	KeyPoints string
}
