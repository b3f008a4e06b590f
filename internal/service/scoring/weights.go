package scoring

import (
	"fmt"
	"math"

	"sovlens/internal/domain/sov"
)

// DefaultWeights balances the four factors so no single one dominates a
// typical run.
func DefaultWeights() sov.WeightConfig {
	return sov.WeightConfig{
		Rank:       1.0,
		Engagement: 1.0,
		Mention:    0.5,
		Sentiment:  1.0,
	}
}

// WeightModel validates a WeightConfig and turns per-item factors into a
// single weighted score. The model is immutable for one analysis run.
type WeightModel struct {
	cfg sov.WeightConfig
}

// NewWeightModel rejects configurations with any negative coefficient or
// with all four coefficients zero, since every score would collapse to
// zero and shares would be undefined.
func NewWeightModel(cfg sov.WeightConfig) (*WeightModel, error) {
	for name, w := range map[string]float64{
		"rank":       cfg.Rank,
		"engagement": cfg.Engagement,
		"mention":    cfg.Mention,
		"sentiment":  cfg.Sentiment,
	} {
		if w < 0 {
			return nil, fmt.Errorf("%w: %s weight is negative (%v)", sov.ErrInvalidConfiguration, name, w)
		}
	}
	if cfg.Rank == 0 && cfg.Engagement == 0 && cfg.Mention == 0 && cfg.Sentiment == 0 {
		return nil, fmt.Errorf("%w: all weights are zero", sov.ErrInvalidConfiguration)
	}
	return &WeightModel{cfg: cfg}, nil
}

// Config returns the validated coefficients.
func (m *WeightModel) Config() sov.WeightConfig {
	return m.cfg
}

// Combine computes the additive weighted score for one (item, brand) pair:
//
//	score = wr*rankFactor(rank) + we*engagement + wm*mentions + ws*sentimentBonus(s)
//
// rank must be >= 1 and sentiment is expected in [-1, 1].
func (m *WeightModel) Combine(rank int, engagement float64, mentionCount int, sentiment float64) (float64, error) {
	if rank < 1 {
		return 0, fmt.Errorf("%w: rank %d below 1", sov.ErrInvalidInput, rank)
	}
	if math.IsNaN(engagement) || math.IsInf(engagement, 0) {
		return 0, fmt.Errorf("%w: engagement is not finite", sov.ErrInvalidInput)
	}
	if mentionCount < 0 {
		return 0, fmt.Errorf("%w: mention count %d below 0", sov.ErrInvalidInput, mentionCount)
	}

	score := m.cfg.Rank*rankFactor(rank) +
		m.cfg.Engagement*engagement +
		m.cfg.Mention*float64(mentionCount) +
		m.cfg.Sentiment*sentimentBonus(sentiment)

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: combined score is not finite", sov.ErrInvalidInput)
	}
	return score, nil
}

// rankFactor decays logarithmically with result position: the top result
// contributes 1.0, rank 10 roughly 0.3. Strictly decreasing in rank.
func rankFactor(rank int) float64 {
	f := 1.0 / math.Log2(float64(rank)+1)
	return math.Min(1.0, f)
}

// sentimentBonus maps polarity in [-1, 1] to a multiplier in [0.3, 1.0].
// Negative sentiment still counts toward presence but never lifts a score
// above the same mention with neutral sentiment.
func sentimentBonus(polarity float64) float64 {
	return clamp(0.65+0.35*polarity, 0.3, 1.0)
}
