package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovlens/internal/domain/sov"
)

func TestNewWeightModelRejectsAllZero(t *testing.T) {
	_, err := NewWeightModel(sov.WeightConfig{})
	require.ErrorIs(t, err, sov.ErrInvalidConfiguration)
}

func TestNewWeightModelRejectsNegative(t *testing.T) {
	_, err := NewWeightModel(sov.WeightConfig{Rank: 1, Engagement: -0.1})
	require.ErrorIs(t, err, sov.ErrInvalidConfiguration)
}

func TestCombineRankMonotonicity(t *testing.T) {
	model, err := NewWeightModel(DefaultWeights())
	require.NoError(t, err)

	prev, err := model.Combine(1, 0.5, 1, 0)
	require.NoError(t, err)
	for rank := 2; rank <= 30; rank++ {
		score, err := model.Combine(rank, 0.5, 1, 0)
		require.NoError(t, err)
		assert.Less(t, score, prev, "rank %d should score below rank %d", rank, rank-1)
		prev = score
	}
}

func TestCombineNegativeSentimentNeverBeatsNeutral(t *testing.T) {
	model, err := NewWeightModel(DefaultWeights())
	require.NoError(t, err)

	neutral, err := model.Combine(3, 0.5, 2, 0)
	require.NoError(t, err)
	negative, err := model.Combine(3, 0.5, 2, -0.8)
	require.NoError(t, err)

	assert.LessOrEqual(t, negative, neutral)
}

func TestCombineRejectsRankBelowOne(t *testing.T) {
	model, err := NewWeightModel(DefaultWeights())
	require.NoError(t, err)

	_, err = model.Combine(0, 0.5, 1, 0)
	require.ErrorIs(t, err, sov.ErrInvalidInput)
}

func TestCombineIsFinite(t *testing.T) {
	model, err := NewWeightModel(sov.WeightConfig{Rank: 100, Engagement: 100, Mention: 100, Sentiment: 100})
	require.NoError(t, err)

	score, err := model.Combine(1, 1e6, 1000, 1)
	require.NoError(t, err)
	assert.False(t, score != score, "score must not be NaN")
}

func TestSentimentBonusBounds(t *testing.T) {
	assert.InDelta(t, 0.3, sentimentBonus(-1), 1e-12)
	assert.InDelta(t, 0.65, sentimentBonus(0), 1e-12)
	assert.InDelta(t, 1.0, sentimentBonus(1), 1e-12)
}
