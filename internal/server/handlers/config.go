// internal/server/handlers/config.go

package handlers

import (
	"net/http"

	"sovlens/internal/config"
)

// ConfigHandler exposes the effective analysis configuration
type ConfigHandler struct {
	analysis config.AnalysisConfig
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(analysis config.AnalysisConfig) *ConfigHandler {
	return &ConfigHandler{
		analysis: analysis,
	}
}

// GetConfig returns the analysis configuration. API keys and connection
// strings are never included.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"target_brand":      h.analysis.TargetBrand,
		"competitor_brands": h.analysis.CompetitorBrands,
		"weights": map[string]float64{
			"rank":       h.analysis.RankWeight,
			"engagement": h.analysis.EngagementWeight,
			"mention":    h.analysis.MentionWeight,
			"sentiment":  h.analysis.SentimentWeight,
		},
		"fuzzy_threshold":      h.analysis.FuzzyThreshold,
		"concurrency":          h.analysis.Concurrency,
		"normalize_engagement": h.analysis.NormalizeEngagement,
	}

	respondWithJSON(w, http.StatusOK, payload)
}
