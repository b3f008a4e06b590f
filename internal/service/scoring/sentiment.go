package scoring

import (
	"regexp"
	"sort"
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"

	"sovlens/internal/domain/sov"
)

var repeatedPunct = regexp.MustCompile(`(!)!+|(\?)\?+`)

// SentimentScorer maps text to a polarity in [-1, 1] using the VADER
// lexicon plus additive domain-phrase adjustments. Deterministic for a
// given text and adjustment table.
type SentimentScorer struct {
	adjustments []phraseWeight
}

type phraseWeight struct {
	phrase string
	weight float64
}

// DefaultDomainAdjustments nudges VADER for appliance-review vocabulary
// that the general lexicon scores neutrally ("quiet" is praise for a fan,
// "noisy" is a complaint).
func DefaultDomainAdjustments() map[string]float64 {
	return map[string]float64{
		"energy saving":    0.3,
		"energy efficient": 0.3,
		"quiet":            0.2,
		"silent":           0.2,
		"powerful":         0.2,
		"stylish":          0.2,
		"premium":          0.2,
		"remote control":   0.1,
		"smart":            0.1,

		"noisy":        -0.3,
		"loud":         -0.3,
		"cheap":        -0.2,
		"slow":         -0.2,
		"weak":         -0.3,
		"poor quality": -0.4,
		"defective":    -0.4,
		"faulty":       -0.4,
	}
}

// NewSentimentScorer creates a scorer. A nil adjustment table disables
// domain tuning. Phrases are ordered at construction so the adjustment sum
// is the same on every call.
func NewSentimentScorer(adjustments map[string]float64) *SentimentScorer {
	ordered := make([]phraseWeight, 0, len(adjustments))
	for phrase, weight := range adjustments {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		if phrase != "" {
			ordered = append(ordered, phraseWeight{phrase: phrase, weight: weight})
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].phrase < ordered[j].phrase })
	return &SentimentScorer{adjustments: ordered}
}

// Score returns the polarity of text. Empty or whitespace-only text is
// neutral; URLs, emoji and unknown tokens contribute neutrally.
func (s *SentimentScorer) Score(text string) sov.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return sov.SentimentResult{Polarity: 0, Label: "neutral"}
	}

	clean := s.preprocess(text)

	parsed := sentitext.Parse(clean, lexicon.DefaultLexicon)
	polarity := sentitext.PolarityScore(parsed).Compound

	polarity += s.domainAdjustment(clean)
	polarity = clamp(polarity, -1, 1)

	return sov.SentimentResult{Polarity: polarity, Label: sentimentLabel(polarity)}
}

func (s *SentimentScorer) preprocess(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = htmlPattern.ReplaceAllString(text, " ")
	text = repeatedPunct.ReplaceAllString(text, "$1$2")
	return spacePattern.ReplaceAllString(text, " ")
}

// domainAdjustment sums the weights of domain phrases present in the text,
// clamped so tuning can shade but never dominate the lexicon score.
func (s *SentimentScorer) domainAdjustment(text string) float64 {
	total := 0.0
	for _, pw := range s.adjustments {
		if strings.Contains(text, pw.phrase) {
			total += pw.weight
		}
	}
	return clamp(total, -0.3, 0.3)
}

func sentimentLabel(polarity float64) string {
	switch {
	case polarity >= 0.1:
		return "positive"
	case polarity <= -0.1:
		return "negative"
	default:
		return "neutral"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
