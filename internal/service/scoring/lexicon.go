package scoring

import (
	"sort"
	"strings"
)

// BrandLexicon maps canonical brand names to the spelling variants and
// exclusion phrases used during mention detection. It is built once from
// configuration and read-only afterwards.
type BrandLexicon struct {
	brands     []string
	variants   map[string][]string
	exclusions map[string][]string
}

// LexiconConfig supplies the brand universe for one analysis run. Variants
// and Exclusions are optional per-brand overrides; aliases for every brand
// are generated automatically.
type LexiconConfig struct {
	TargetBrand      string
	CompetitorBrands []string
	Variants         map[string][]string
	Exclusions       map[string][]string
}

// NewBrandLexicon builds a lexicon from configuration. Brand order is
// preserved (target first) and variant sets are deduplicated and sorted
// longest-first so multi-word variants win over their prefixes. Variants
// and exclusion phrases go through the same normalization as scanned text,
// so punctuated names like "O'General" match their own mentions.
func NewBrandLexicon(cfg LexiconConfig) *BrandLexicon {
	brands := make([]string, 0, len(cfg.CompetitorBrands)+1)
	if cfg.TargetBrand != "" {
		brands = append(brands, cfg.TargetBrand)
	}
	for _, b := range cfg.CompetitorBrands {
		if b != "" && b != cfg.TargetBrand {
			brands = append(brands, b)
		}
	}

	variants := make(map[string][]string, len(brands))
	exclusions := make(map[string][]string, len(brands))
	for _, brand := range brands {
		set := make(map[string]struct{})
		for _, alias := range generateAliases(brand) {
			if alias = normalizeText(alias); alias != "" {
				set[alias] = struct{}{}
			}
		}
		for _, v := range cfg.Variants[brand] {
			if v = normalizeText(v); v != "" {
				set[v] = struct{}{}
			}
		}

		list := make([]string, 0, len(set))
		for v := range set {
			list = append(list, v)
		}
		sort.Slice(list, func(i, j int) bool {
			if len(list[i]) != len(list[j]) {
				return len(list[i]) > len(list[j])
			}
			return list[i] < list[j]
		})
		variants[brand] = list

		for _, e := range cfg.Exclusions[brand] {
			if e = normalizeText(e); e != "" {
				exclusions[brand] = append(exclusions[brand], e)
			}
		}
	}

	return &BrandLexicon{
		brands:     brands,
		variants:   variants,
		exclusions: exclusions,
	}
}

// Brands returns the canonical brand names in configuration order.
func (l *BrandLexicon) Brands() []string {
	out := make([]string, len(l.brands))
	copy(out, l.brands)
	return out
}

// Variants returns the normalized spelling variants for a brand.
func (l *BrandLexicon) Variants(brand string) []string {
	if v, ok := l.variants[brand]; ok {
		return v
	}
	return []string{normalizeText(brand)}
}

// ShouldExclude reports whether text contains a phrase known to be a false
// positive for the brand, such as "orientation" for "Orient".
func (l *BrandLexicon) ShouldExclude(text, brand string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range l.exclusions[brand] {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// generateAliases derives lowercase lookup variants from a brand name:
// the name itself, the space-free form, and the first word of multi-word
// names.
func generateAliases(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	set := map[string]struct{}{name: {}}
	parts := strings.Fields(name)

	if len(parts) > 1 {
		set[strings.Join(parts, "")] = struct{}{}
		set[parts[0]] = struct{}{}
	}

	cleaned := strings.NewReplacer("-", "", "_", "").Replace(strings.Join(parts, ""))
	set[cleaned] = struct{}{}

	aliases := make([]string, 0, len(set))
	for a := range set {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return aliases
}
