package sov

import (
	"sort"
	"time"
)

// Platform identifies the kind of surface an item was collected from.
type Platform string

const (
	PlatformSearch Platform = "search"
	PlatformVideo  Platform = "video"
)

// PlatformItem is one collected unit (a search result or a video).
// Items are produced by collectors and never mutated afterwards.
type PlatformItem struct {
	ID          string    `json:"id"`
	Platform    Platform  `json:"platform"`
	Rank        int       `json:"rank"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	URL         string    `json:"url"`
	Keyword     string    `json:"keyword"`
	Engagement  float64   `json:"engagement"`
	CollectedAt time.Time `json:"collected_at"`
}

// BrandMatch is the result of running mention detection against one item
// for one brand.
type BrandMatch struct {
	Brand           string  `json:"brand"`
	Matched         bool    `json:"matched"`
	Confidence      float64 `json:"confidence"`
	OccurrenceCount int     `json:"occurrence_count"`
}

// SentimentResult holds the polarity of one item's text in [-1, 1].
type SentimentResult struct {
	Polarity float64 `json:"polarity"`
	Label    string  `json:"label"`
}

// WeightConfig holds the four scoring coefficients. All coefficients must be
// non-negative and at least one must be positive.
type WeightConfig struct {
	Rank       float64 `json:"rank_weight"`
	Engagement float64 `json:"engagement_weight"`
	Mention    float64 `json:"mention_weight"`
	Sentiment  float64 `json:"sentiment_weight"`
}

// Key identifies one cell of the brand x platform score matrix.
type Key struct {
	Brand    string   `json:"brand"`
	Platform Platform `json:"platform"`
}

// Score is the per (brand, platform) aggregate. NormalizedShare is
// RawScore divided by the platform total, in [0, 1]; when every brand's
// raw score on a platform is zero the share is zero, never NaN.
type Score struct {
	Brand            string   `json:"brand"`
	Platform         Platform `json:"platform"`
	RawScore         float64  `json:"raw_score"`
	NormalizedShare  float64  `json:"normalized_share"`
	MentionCount     int      `json:"mention_count"`
	ItemCount        int      `json:"item_count"`
	PositiveMentions int      `json:"positive_mentions"`
	AverageRank      float64  `json:"average_rank"`
	AverageSentiment float64  `json:"average_sentiment"`
}

// Warning records one item excluded from an aggregation run.
type Warning struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// Result is the sole artifact an aggregation run produces: the complete
// brand x platform score matrix plus the manifest of skipped items.
type Result struct {
	Scores   map[Key]Score `json:"-"`
	Warnings []Warning     `json:"warnings"`
}

// ScoreList returns the matrix as a slice ordered by platform then brand,
// for serialization and reporting.
func (r *Result) ScoreList() []Score {
	scores := make([]Score, 0, len(r.Scores))
	for _, s := range r.Scores {
		scores = append(scores, s)
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Platform != scores[j].Platform {
			return scores[i].Platform < scores[j].Platform
		}
		return scores[i].Brand < scores[j].Brand
	})
	return scores
}
