package insight

// Priority orders insights for reporting.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Insight is one ranked recommendation derived from aggregated SoV metrics.
type Insight struct {
	Type           string   `json:"type"`
	Brand          string   `json:"brand"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Priority       Priority `json:"priority"`
	Score          float64  `json:"score"`
}

// CompetitivePosition summarizes the target brand against its competitors
// across the whole run.
type CompetitivePosition struct {
	TargetBrand       string  `json:"target_brand"`
	TargetShare       float64 `json:"target_share"`
	TargetRank        int     `json:"target_rank"`
	TotalBrands       int     `json:"total_brands"`
	Leader            string  `json:"leader"`
	GapToLeader       float64 `json:"gap_to_leader"`
	BestPlatform      string  `json:"best_platform"`
	AverageSentiment  float64 `json:"average_sentiment"`
	CompetitorAvgSent float64 `json:"competitor_avg_sentiment"`
}
