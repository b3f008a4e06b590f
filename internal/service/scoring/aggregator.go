package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"sovlens/internal/domain/sov"
	"sovlens/internal/pkg/logger"
)

// AggregatorConfig bounds the enrichment worker pool and toggles
// engagement normalization.
type AggregatorConfig struct {
	// Concurrency limits parallel per-item enrichment. Values below 1
	// fall back to 1.
	Concurrency int

	// NormalizeEngagement scales each item's engagement by the 95th
	// percentile of its platform before scoring, so view-count outliers
	// do not drown the other factors.
	NormalizeEngagement bool
}

// Aggregator runs per-item enrichment on a bounded worker pool and folds
// the enriched results into the brand x platform score matrix. The fold is
// single-threaded and runs in input order, so identical inputs produce
// bit-identical results regardless of worker scheduling.
type Aggregator struct {
	detector sov.MentionDetector
	scorer   sov.SentimentScorer
	weights  *WeightModel
	cfg      AggregatorConfig
	log      *logger.Logger
}

// NewAggregator wires the enrichment components to a validated weight
// model.
func NewAggregator(
	detector sov.MentionDetector,
	scorer sov.SentimentScorer,
	weights *WeightModel,
	cfg AggregatorConfig,
	log *logger.Logger,
) *Aggregator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{
		detector: detector,
		scorer:   scorer,
		weights:  weights,
		cfg:      cfg,
		log:      log,
	}
}

type enrichedItem struct {
	item      sov.PlatformItem
	matches   []sov.BrandMatch
	sentiment sov.SentimentResult
	skip      *sov.Warning
}

type brandAccumulator struct {
	raw          float64
	mentions     int
	items        int
	positive     int
	rankSum      float64
	sentimentSum float64
}

// Aggregate enriches every item with brand matches and sentiment, scores
// each matched (item, brand) pair, and rolls the scores up per (brand,
// platform). Brands with zero matches on a platform still appear in the
// result with zero scores. Malformed items are skipped and recorded as
// warnings, never aborting the run.
func (a *Aggregator) Aggregate(ctx context.Context, items []sov.PlatformItem, brands []string) (*sov.Result, error) {
	tracked := make(map[string]struct{}, len(brands))
	unique := make([]string, 0, len(brands))
	for _, b := range brands {
		if _, seen := tracked[b]; seen {
			continue
		}
		tracked[b] = struct{}{}
		unique = append(unique, b)
	}
	brands = unique

	enriched, err := a.enrichAll(ctx, items)
	if err != nil {
		return nil, err
	}

	result := &sov.Result{Scores: make(map[sov.Key]sov.Score)}
	norms := a.engagementNorms(enriched)

	// Deterministic fold: input order over items, lexicon order over
	// matches within an item.
	accums := make(map[sov.Key]*brandAccumulator)
	platforms := make(map[sov.Platform]struct{})
	for _, e := range enriched {
		if e.skip != nil {
			result.Warnings = append(result.Warnings, *e.skip)
			a.log.Warn("skipping platform item", "item_id", e.skip.ItemID, "reason", e.skip.Reason)
			continue
		}
		platforms[e.item.Platform] = struct{}{}

		engagement := e.item.Engagement
		if a.cfg.NormalizeEngagement {
			engagement = norms.apply(e.item.Platform, engagement)
		}

		for _, match := range e.matches {
			if !match.Matched {
				continue
			}
			if _, ok := tracked[match.Brand]; !ok {
				continue
			}

			score, err := a.weights.Combine(e.item.Rank, engagement, match.OccurrenceCount, e.sentiment.Polarity)
			if err != nil {
				result.Warnings = append(result.Warnings, sov.Warning{
					ItemID: e.item.ID,
					Reason: fmt.Sprintf("scoring %s: %v", match.Brand, err),
				})
				continue
			}

			key := sov.Key{Brand: match.Brand, Platform: e.item.Platform}
			acc := accums[key]
			if acc == nil {
				acc = &brandAccumulator{}
				accums[key] = acc
			}
			acc.raw += score
			acc.mentions += match.OccurrenceCount
			acc.items++
			acc.rankSum += float64(e.item.Rank)
			acc.sentimentSum += e.sentiment.Polarity
			if e.sentiment.Polarity > 0.2 {
				acc.positive++
			}
		}
	}

	// Complete the matrix: every tracked brand appears on every platform
	// seen in the item set, with zeros where nothing matched.
	keys := make([]sov.Key, 0, len(brands)*len(platforms))
	for p := range platforms {
		for _, b := range brands {
			keys = append(keys, sov.Key{Brand: b, Platform: p})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Platform != keys[j].Platform {
			return keys[i].Platform < keys[j].Platform
		}
		return keys[i].Brand < keys[j].Brand
	})

	totals := make(map[sov.Platform]float64)
	for _, key := range keys {
		if acc := accums[key]; acc != nil {
			totals[key.Platform] += acc.raw
		}
	}

	for _, key := range keys {
		s := sov.Score{Brand: key.Brand, Platform: key.Platform}
		if acc := accums[key]; acc != nil {
			s.RawScore = acc.raw
			s.MentionCount = acc.mentions
			s.ItemCount = acc.items
			s.PositiveMentions = acc.positive
			if acc.items > 0 {
				s.AverageRank = acc.rankSum / float64(acc.items)
				s.AverageSentiment = acc.sentimentSum / float64(acc.items)
			}
		}
		if total := totals[key.Platform]; total > 0 {
			s.NormalizedShare = s.RawScore / total
		}
		result.Scores[key] = s
	}

	return result, nil
}

// enrichAll runs mention detection and sentiment scoring for every item on
// a bounded pool. Results land in a slice indexed by item position, so no
// synchronization beyond the group wait is needed.
func (a *Aggregator) enrichAll(ctx context.Context, items []sov.PlatformItem) ([]enrichedItem, error) {
	enriched := make([]enrichedItem, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i := range items {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			enriched[i] = a.enrich(items[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

func (a *Aggregator) enrich(item sov.PlatformItem) enrichedItem {
	if reason := validateItem(item); reason != "" {
		return enrichedItem{item: item, skip: &sov.Warning{ItemID: item.ID, Reason: reason}}
	}
	return enrichedItem{
		item:      item,
		matches:   a.detector.Detect(item.Text),
		sentiment: a.scorer.Score(item.Text),
	}
}

func validateItem(item sov.PlatformItem) string {
	switch {
	case item.Platform == "":
		return "missing platform"
	case item.Rank < 1:
		return fmt.Sprintf("rank %d below 1", item.Rank)
	case len(item.Text) == 0:
		return "missing text"
	case math.IsNaN(item.Engagement) || math.IsInf(item.Engagement, 0) || item.Engagement < 0:
		return fmt.Sprintf("engagement %v not a non-negative finite number", item.Engagement)
	default:
		return ""
	}
}

// engagementNorm holds the per-platform p95 engagement used to scale raw
// engagement into a comparable range.
type engagementNorm map[sov.Platform]float64

func (n engagementNorm) apply(platform sov.Platform, engagement float64) float64 {
	p95, ok := n[platform]
	if !ok || p95 <= 0 {
		return engagement
	}
	return math.Min(1.5, engagement/p95)
}

func (a *Aggregator) engagementNorms(enriched []enrichedItem) engagementNorm {
	if !a.cfg.NormalizeEngagement {
		return nil
	}
	byPlatform := make(map[sov.Platform][]float64)
	for _, e := range enriched {
		if e.skip != nil {
			continue
		}
		byPlatform[e.item.Platform] = append(byPlatform[e.item.Platform], e.item.Engagement)
	}
	norms := make(engagementNorm, len(byPlatform))
	for platform, values := range byPlatform {
		norms[platform] = percentile(values, 0.95)
	}
	return norms
}

// percentile returns the nearest-rank percentile of values. The input
// slice is not modified.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
