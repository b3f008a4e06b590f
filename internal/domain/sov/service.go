package sov

import (
	"context"
)

// MentionDetector finds brand mentions in free text. Implementations must
// be pure functions of their inputs and safe for concurrent use.
type MentionDetector interface {
	// Detect returns one BrandMatch per tracked brand, matched or not.
	Detect(text string) []BrandMatch
}

// SentimentScorer maps text to a bounded polarity value. Empty or
// whitespace-only text scores neutral, never errors.
type SentimentScorer interface {
	Score(text string) SentimentResult
}

// Aggregator combines per-item scores into the brand x platform matrix.
type Aggregator interface {
	Aggregate(ctx context.Context, items []PlatformItem, brands []string) (*Result, error)
}
