package model

import "strings"

// Sentiment is the overall tone label of analyzed content.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// AllSentiments returns the closed set of sentiment labels.
func AllSentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}
}

// ParseSentiment normalizes a free-form label from a model response.
// Case and surrounding whitespace are ignored; labels that merely start with
// a known value ("Positive overall") are accepted.
func ParseSentiment(s string) (Sentiment, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, known := range AllSentiments() {
		if v == string(known) || strings.HasPrefix(v, string(known)) {
			return known, true
		}
	}
	return "", false
}

// OutputFormat is the response shape an analysis action expects.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputJSON     OutputFormat = "json"
)

// AnalysisResult is the structured analysis of cleaned page content.
type AnalysisResult struct {
	Summary   string    `json:"summary"`
	KeyPoints []string  `json:"keyPoints"`
	Entities  []string  `json:"entities"`
	Sentiment Sentiment `json:"sentiment"`
}

// ReportResult wraps the Markdown report produced by report-style actions.
type ReportResult struct {
	Summary string `json:"summary"`
}
