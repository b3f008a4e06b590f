package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"sovlens/internal/domain/sov"
)

// DefaultFuzzyThreshold is the similarity a token window must reach before
// it counts as a brand mention.
const DefaultFuzzyThreshold = 0.85

var (
	urlPattern     = regexp.MustCompile(`http[s]?://\S+|www\.\S+`)
	htmlPattern    = regexp.MustCompile(`<[^>]+>`)
	handlePattern  = regexp.MustCompile(`[#@]\w+`)
	spacePattern   = regexp.MustCompile(`\s+`)
	nonWordPattern = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// MentionDetector performs fuzzy brand matching against free text. It is a
// pure function of its inputs and safe for concurrent use.
type MentionDetector struct {
	lexicon   *BrandLexicon
	threshold float64
	exact     map[string]*regexp.Regexp
}

// NewMentionDetector compiles word-boundary patterns for every brand
// variant. The threshold must lie in [0, 1].
func NewMentionDetector(lexicon *BrandLexicon, threshold float64) (*MentionDetector, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("%w: fuzzy threshold %v outside [0, 1]", sov.ErrInvalidConfiguration, threshold)
	}

	exact := make(map[string]*regexp.Regexp, len(lexicon.Brands()))
	for _, brand := range lexicon.Brands() {
		variants := lexicon.Variants(brand)
		escaped := make([]string, len(variants))
		for i, v := range variants {
			escaped[i] = regexp.QuoteMeta(v)
		}
		exact[brand] = regexp.MustCompile(`\b(?:` + strings.Join(escaped, "|") + `)\b`)
	}

	return &MentionDetector{
		lexicon:   lexicon,
		threshold: threshold,
		exact:     exact,
	}, nil
}

// Detect returns one BrandMatch per tracked brand, in lexicon order. Exact
// word-boundary hits score confidence 1.0; otherwise the best fuzzy token
// window decides. Empty text yields no matches.
func (d *MentionDetector) Detect(text string) []sov.BrandMatch {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	clean := normalizeText(text)
	tokens := strings.Fields(clean)

	matches := make([]sov.BrandMatch, 0, len(d.lexicon.Brands()))
	for _, brand := range d.lexicon.Brands() {
		matches = append(matches, d.detectBrand(brand, clean, tokens))
	}
	return matches
}

func (d *MentionDetector) detectBrand(brand, clean string, tokens []string) sov.BrandMatch {
	match := sov.BrandMatch{Brand: brand}

	if d.lexicon.ShouldExclude(clean, brand) {
		return match
	}

	// Exact pass first: word-boundary hits on any variant.
	if hits := d.exact[brand].FindAllString(clean, -1); len(hits) > 0 {
		match.Matched = true
		match.Confidence = 1.0
		match.OccurrenceCount = len(hits)
		return match
	}

	// Fuzzy pass: slide a token window the width of each variant and take
	// edit-distance similarity against the joined window.
	best := 0.0
	count := 0
	for i := 0; i < len(tokens); {
		windowSim, windowLen := 0.0, 1
		for _, variant := range d.lexicon.Variants(brand) {
			width := len(strings.Fields(variant))
			if width == 0 || i+width > len(tokens) {
				continue
			}
			window := strings.Join(tokens[i:i+width], " ")
			if sim := similarity(window, variant); sim > windowSim {
				windowSim, windowLen = sim, width
			}
		}
		if windowSim > best {
			best = windowSim
		}
		if windowSim >= d.threshold {
			count++
			i += windowLen
			continue
		}
		i++
	}

	match.Confidence = best
	if best >= d.threshold {
		match.Matched = true
		match.OccurrenceCount = count
	}
	return match
}

// similarity is the normalized Levenshtein similarity of two strings:
// 1 - distance/max(len). Identical strings score 1.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// normalizeText lowercases and strips URLs, markup, social handles and
// punctuation so the same normalization applies to text and brand variants.
func normalizeText(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = htmlPattern.ReplaceAllString(text, " ")
	text = handlePattern.ReplaceAllString(text, " ")
	text = nonWordPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
