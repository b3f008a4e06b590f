package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovlens/internal/domain/insight"
	"sovlens/internal/domain/sov"
)

func resultWith(scores ...sov.Score) *sov.Result {
	r := &sov.Result{Scores: make(map[sov.Key]sov.Score)}
	for _, s := range scores {
		r.Scores[sov.Key{Brand: s.Brand, Platform: s.Platform}] = s
	}
	return r
}

func TestPositionRanksBrandsByShare(t *testing.T) {
	gen := NewGenerator("Atomberg")

	result := resultWith(
		sov.Score{Brand: "Atomberg", Platform: sov.PlatformSearch, RawScore: 3, NormalizedShare: 0.3, ItemCount: 2, AverageRank: 2, AverageSentiment: 0.1},
		sov.Score{Brand: "Havells", Platform: sov.PlatformSearch, RawScore: 7, NormalizedShare: 0.7, ItemCount: 3, AverageRank: 1.5, AverageSentiment: 0.2},
	)

	pos := gen.Position(result)
	assert.Equal(t, "Havells", pos.Leader)
	assert.Equal(t, 2, pos.TargetRank)
	assert.Equal(t, 2, pos.TotalBrands)
	assert.InDelta(t, 0.4, pos.GapToLeader, 1e-9)
	assert.Equal(t, "search", pos.BestPlatform)
}

func TestGenerateFlagsTrailingTarget(t *testing.T) {
	gen := NewGenerator("Atomberg")

	result := resultWith(
		sov.Score{Brand: "Atomberg", Platform: sov.PlatformSearch, NormalizedShare: 0.1, ItemCount: 2, AverageRank: 8, AverageSentiment: -0.2},
		sov.Score{Brand: "Havells", Platform: sov.PlatformSearch, NormalizedShare: 0.9, ItemCount: 5, AverageRank: 1.5, AverageSentiment: 0.3},
	)

	insights := gen.Generate(result)
	require.NotEmpty(t, insights)

	types := make(map[string]insight.Insight, len(insights))
	for _, in := range insights {
		types[in.Type] = in
	}
	assert.Contains(t, types, "leader_gap")
	assert.Contains(t, types, "low_overall_sov")
	assert.Contains(t, types, "poor_ranking")
	assert.Contains(t, types, "sentiment_gap")
	assert.Equal(t, insight.PriorityHigh, types["leader_gap"].Priority)

	// High-priority insights sort before medium ones.
	assert.Equal(t, insight.PriorityHigh, insights[0].Priority)
}

func TestGenerateQuietWhenLeading(t *testing.T) {
	gen := NewGenerator("Atomberg")

	result := resultWith(
		sov.Score{Brand: "Atomberg", Platform: sov.PlatformSearch, NormalizedShare: 0.8, ItemCount: 5, AverageRank: 1.2, AverageSentiment: 0.4},
		sov.Score{Brand: "Havells", Platform: sov.PlatformSearch, NormalizedShare: 0.2, ItemCount: 2, AverageRank: 6, AverageSentiment: 0.1},
	)

	for _, in := range gen.Generate(result) {
		assert.NotEqual(t, "leader_gap", in.Type)
		assert.NotEqual(t, "low_overall_sov", in.Type)
		assert.NotEqual(t, "poor_ranking", in.Type)
	}
}

func TestGenerateEmptyResult(t *testing.T) {
	gen := NewGenerator("Atomberg")
	assert.Empty(t, gen.Generate(&sov.Result{Scores: map[sov.Key]sov.Score{}}))
	assert.Empty(t, gen.Generate(nil))
}
