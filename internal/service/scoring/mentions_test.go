package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovlens/internal/domain/sov"
)

func testLexicon() *BrandLexicon {
	return NewBrandLexicon(LexiconConfig{
		TargetBrand:      "Atomberg",
		CompetitorBrands: []string{"Orient Electric", "Usha"},
		Exclusions: map[string][]string{
			"Orient Electric": {"orientation", "oriental"},
			"Usha":            {"usher"},
		},
	})
}

func findMatch(t *testing.T, matches []sov.BrandMatch, brand string) sov.BrandMatch {
	t.Helper()
	for _, m := range matches {
		if m.Brand == brand {
			return m
		}
	}
	t.Fatalf("no match entry for brand %q", brand)
	return sov.BrandMatch{}
}

func TestDetectExactMention(t *testing.T) {
	detector, err := NewMentionDetector(testLexicon(), 0.8)
	require.NoError(t, err)

	matches := detector.Detect("Atomberg smart fan review")
	m := findMatch(t, matches, "Atomberg")

	assert.True(t, m.Matched)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, 1, m.OccurrenceCount)
}

func TestDetectNoMention(t *testing.T) {
	detector, err := NewMentionDetector(testLexicon(), 0.8)
	require.NoError(t, err)

	matches := detector.Detect("generic fan review")
	m := findMatch(t, matches, "Atomberg")

	assert.False(t, m.Matched)
	assert.Zero(t, m.OccurrenceCount)
}

func TestDetectToleratesMisspelling(t *testing.T) {
	detector, err := NewMentionDetector(testLexicon(), 0.8)
	require.NoError(t, err)

	matches := detector.Detect("the atomburg fan is very quiet")
	m := findMatch(t, matches, "Atomberg")

	assert.True(t, m.Matched)
	assert.Less(t, m.Confidence, 1.0)
	assert.GreaterOrEqual(t, m.Confidence, 0.8)
	assert.Equal(t, 1, m.OccurrenceCount)
}

func TestDetectCountsNonOverlappingOccurrences(t *testing.T) {
	detector, err := NewMentionDetector(testLexicon(), 0.8)
	require.NoError(t, err)

	matches := detector.Detect("Atomberg Renesa vs atomberg Efficio: which Atomberg is best?")
	m := findMatch(t, matches, "Atomberg")

	assert.True(t, m.Matched)
	assert.Equal(t, 3, m.OccurrenceCount)
}

func TestDetectEmptyText(t *testing.T) {
	detector, err := NewMentionDetector(testLexicon(), 0.8)
	require.NoError(t, err)

	assert.Empty(t, detector.Detect(""))
	assert.Empty(t, detector.Detect("   \n\t"))
}

func TestDetectAppliesExclusions(t *testing.T) {
	detector, err := NewMentionDetector(testLexicon(), 0.8)
	require.NoError(t, err)

	matches := detector.Detect("the orientation of the blades matters")
	m := findMatch(t, matches, "Orient Electric")

	assert.False(t, m.Matched)
}

func TestDetectMatchesPunctuatedBrandName(t *testing.T) {
	lexicon := NewBrandLexicon(LexiconConfig{
		TargetBrand:      "O'General",
		CompetitorBrands: []string{"Atomberg"},
	})
	detector, err := NewMentionDetector(lexicon, DefaultFuzzyThreshold)
	require.NoError(t, err)

	// The apostrophe is stripped from scanned text, so the variant set must
	// carry the same stripped form.
	matches := detector.Detect("O'General fan pricing and availability")
	m := findMatch(t, matches, "O'General")

	assert.True(t, m.Matched)
	assert.Equal(t, 1.0, m.Confidence)
	assert.Equal(t, 1, m.OccurrenceCount)
}

func TestDetectNormalizesConfiguredVariants(t *testing.T) {
	lexicon := NewBrandLexicon(LexiconConfig{
		TargetBrand: "Atomberg",
		Variants: map[string][]string{
			"Atomberg": {"Atom-Berg!"},
		},
	})
	detector, err := NewMentionDetector(lexicon, DefaultFuzzyThreshold)
	require.NoError(t, err)

	matches := detector.Detect("the atom berg ceiling fan")
	m := findMatch(t, matches, "Atomberg")

	assert.True(t, m.Matched)
	assert.Equal(t, 1.0, m.Confidence)
}

func TestDetectIgnoresURLsAndEmoji(t *testing.T) {
	detector, err := NewMentionDetector(testLexicon(), 0.8)
	require.NoError(t, err)

	matches := detector.Detect("Atomberg fan 🔥 https://example.com/atomberg-review #fans")
	m := findMatch(t, matches, "Atomberg")

	assert.True(t, m.Matched)
	assert.Equal(t, 1, m.OccurrenceCount)
}

func TestNewMentionDetectorRejectsBadThreshold(t *testing.T) {
	_, err := NewMentionDetector(testLexicon(), 1.5)
	require.ErrorIs(t, err, sov.ErrInvalidConfiguration)
}
