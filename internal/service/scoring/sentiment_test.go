package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyTextIsNeutral(t *testing.T) {
	scorer := NewSentimentScorer(DefaultDomainAdjustments())

	assert.Equal(t, 0.0, scorer.Score("").Polarity)
	assert.Equal(t, 0.0, scorer.Score("   \t\n").Polarity)
	assert.Equal(t, "neutral", scorer.Score("").Label)
}

func TestScoreNegativeText(t *testing.T) {
	scorer := NewSentimentScorer(DefaultDomainAdjustments())

	result := scorer.Score("This fan is terrible and overpriced")
	assert.Negative(t, result.Polarity)
	assert.Equal(t, "negative", result.Label)
}

func TestScorePositiveText(t *testing.T) {
	scorer := NewSentimentScorer(DefaultDomainAdjustments())

	result := scorer.Score("Excellent build quality, highly recommend")
	assert.Positive(t, result.Polarity)
	assert.Equal(t, "positive", result.Label)
}

func TestScoreToleratesURLsAndEmoji(t *testing.T) {
	scorer := NewSentimentScorer(DefaultDomainAdjustments())

	result := scorer.Score("🔥🔥 https://example.com/review こんにちは")
	assert.GreaterOrEqual(t, result.Polarity, -1.0)
	assert.LessOrEqual(t, result.Polarity, 1.0)
}

func TestScoreBounds(t *testing.T) {
	scorer := NewSentimentScorer(DefaultDomainAdjustments())

	result := scorer.Score("best best best excellent amazing love love quiet silent premium powerful!!!")
	assert.LessOrEqual(t, result.Polarity, 1.0)

	result = scorer.Score("terrible awful horrible noisy defective faulty waste regret!!!")
	assert.GreaterOrEqual(t, result.Polarity, -1.0)
}

func TestScoreIsDeterministic(t *testing.T) {
	scorer := NewSentimentScorer(DefaultDomainAdjustments())

	text := "The Atomberg fan is quiet and energy efficient but the remote feels cheap"
	first := scorer.Score(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, scorer.Score(text))
	}
}

func TestScoreDomainAdjustmentShadesResult(t *testing.T) {
	plain := NewSentimentScorer(nil)
	tuned := NewSentimentScorer(DefaultDomainAdjustments())

	text := "the fan is quiet"
	assert.Greater(t, tuned.Score(text).Polarity, plain.Score(text).Polarity)
}
