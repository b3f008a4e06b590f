package insight

import (
	"fmt"
	"sort"

	"sovlens/internal/domain/insight"
	"sovlens/internal/domain/sov"
)

// brandRollup is one brand's metrics macro-averaged across the platforms it
// appears on.
type brandRollup struct {
	brand        string
	avgShare     float64
	avgRank      float64
	avgSentiment float64
	mentions     int
	bestPlatform sov.Platform
	bestShare    float64
}

// Generator derives ranked recommendations for the target brand from an
// aggregation result.
type Generator struct {
	targetBrand string
}

// NewGenerator creates a generator focused on the given target brand.
func NewGenerator(targetBrand string) *Generator {
	return &Generator{targetBrand: targetBrand}
}

// Position summarizes where the target brand stands against every other
// tracked brand across the run.
func (g *Generator) Position(result *sov.Result) insight.CompetitivePosition {
	rollups := g.rollup(result)

	pos := insight.CompetitivePosition{
		TargetBrand: g.targetBrand,
		TotalBrands: len(rollups),
	}

	competitorSent := 0.0
	competitors := 0
	for i, r := range rollups {
		if r.brand == g.targetBrand {
			pos.TargetShare = r.avgShare
			pos.TargetRank = i + 1
			pos.AverageSentiment = r.avgSentiment
			pos.BestPlatform = string(r.bestPlatform)
			continue
		}
		competitorSent += r.avgSentiment
		competitors++
	}
	if len(rollups) > 0 {
		pos.Leader = rollups[0].brand
		pos.GapToLeader = rollups[0].avgShare - pos.TargetShare
	}
	if competitors > 0 {
		pos.CompetitorAvgSent = competitorSent / float64(competitors)
	}
	return pos
}

// Generate returns recommendations ordered by priority, then by the size of
// the problem they describe. An empty result yields no insights.
func (g *Generator) Generate(result *sov.Result) []insight.Insight {
	rollups := g.rollup(result)
	if len(rollups) == 0 {
		return nil
	}

	var target *brandRollup
	for i := range rollups {
		if rollups[i].brand == g.targetBrand {
			target = &rollups[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	var insights []insight.Insight

	if leader := rollups[0]; leader.brand != g.targetBrand {
		gap := leader.avgShare - target.avgShare
		insights = append(insights, insight.Insight{
			Type:  "leader_gap",
			Brand: g.targetBrand,
			Description: fmt.Sprintf("%s trails %s by %.1f share points",
				g.targetBrand, leader.brand, gap*100),
			Recommendation: fmt.Sprintf("Benchmark %s's content mix on %s, its strongest platform",
				leader.brand, leader.bestPlatform),
			Priority: priorityForGap(gap),
			Score:    gap,
		})
	}

	if target.avgShare < 0.20 {
		insights = append(insights, insight.Insight{
			Type:  "low_overall_sov",
			Brand: g.targetBrand,
			Description: fmt.Sprintf("%s holds %.1f%% share of voice across tracked platforms",
				g.targetBrand, target.avgShare*100),
			Recommendation: "Increase content creation and SEO effort across all tracked keywords",
			Priority:       insight.PriorityHigh,
			Score:          0.20 - target.avgShare,
		})
	}

	if target.avgRank > 5 {
		insights = append(insights, insight.Insight{
			Type:  "poor_ranking",
			Brand: g.targetBrand,
			Description: fmt.Sprintf("%s's average result position is %.1f",
				g.targetBrand, target.avgRank),
			Recommendation: "Optimize titles, descriptions and authority signals to move into the top five results",
			Priority:       insight.PriorityHigh,
			Score:          target.avgRank - 5,
		})
	}

	competitorSent, competitors := 0.0, 0
	for _, r := range rollups {
		if r.brand != g.targetBrand {
			competitorSent += r.avgSentiment
			competitors++
		}
	}
	if competitors > 0 {
		avg := competitorSent / float64(competitors)
		if target.avgSentiment < avg-0.05 {
			insights = append(insights, insight.Insight{
				Type:  "sentiment_gap",
				Brand: g.targetBrand,
				Description: fmt.Sprintf("%s's average sentiment (%.2f) sits below the competitor average (%.2f)",
					g.targetBrand, target.avgSentiment, avg),
				Recommendation: "Address recurring complaints surfacing in negative mentions before scaling reach",
				Priority:       insight.PriorityMedium,
				Score:          avg - target.avgSentiment,
			})
		}
	}

	for _, ps := range platformShares(result, g.targetBrand) {
		platform, share := ps.platform, ps.share
		if target.bestShare > 0 && share < target.bestShare*0.5 {
			insights = append(insights, insight.Insight{
				Type:  "platform_weakness",
				Brand: g.targetBrand,
				Description: fmt.Sprintf("%s's %.1f%% share on %s is less than half its %.1f%% share on %s",
					g.targetBrand, share*100, platform, target.bestShare*100, target.bestPlatform),
				Recommendation: fmt.Sprintf("Invest in %s-native content to balance platform coverage", platform),
				Priority:       insight.PriorityMedium,
				Score:          target.bestShare - share,
			})
		}
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if pi, pj := priorityWeight(insights[i].Priority), priorityWeight(insights[j].Priority); pi != pj {
			return pi > pj
		}
		if insights[i].Score != insights[j].Score {
			return insights[i].Score > insights[j].Score
		}
		return insights[i].Type < insights[j].Type
	})
	return insights
}

// rollup macro-averages each brand's per-platform scores and returns the
// brands ordered by average share, best first.
func (g *Generator) rollup(result *sov.Result) []brandRollup {
	if result == nil || len(result.Scores) == 0 {
		return nil
	}

	byBrand := make(map[string][]sov.Score)
	for _, s := range result.Scores {
		byBrand[s.Brand] = append(byBrand[s.Brand], s)
	}

	rollups := make([]brandRollup, 0, len(byBrand))
	for brand, scores := range byBrand {
		sort.Slice(scores, func(i, j int) bool { return scores[i].Platform < scores[j].Platform })

		r := brandRollup{brand: brand}
		rankSum, sentSum, ranked := 0.0, 0.0, 0
		for _, s := range scores {
			r.avgShare += s.NormalizedShare
			r.mentions += s.MentionCount
			if s.NormalizedShare > r.bestShare {
				r.bestShare = s.NormalizedShare
				r.bestPlatform = s.Platform
			}
			if s.ItemCount > 0 {
				rankSum += s.AverageRank
				sentSum += s.AverageSentiment
				ranked++
			}
		}
		r.avgShare /= float64(len(scores))
		if ranked > 0 {
			r.avgRank = rankSum / float64(ranked)
			r.avgSentiment = sentSum / float64(ranked)
		}
		rollups = append(rollups, r)
	}

	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].avgShare != rollups[j].avgShare {
			return rollups[i].avgShare > rollups[j].avgShare
		}
		return rollups[i].brand < rollups[j].brand
	})
	return rollups
}

type platformShare struct {
	platform sov.Platform
	share    float64
}

func platformShares(result *sov.Result, brand string) []platformShare {
	var shares []platformShare
	for _, s := range result.Scores {
		if s.Brand == brand {
			shares = append(shares, platformShare{platform: s.Platform, share: s.NormalizedShare})
		}
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].platform < shares[j].platform })
	return shares
}

func priorityForGap(gap float64) insight.Priority {
	if gap > 0.15 {
		return insight.PriorityHigh
	}
	return insight.PriorityMedium
}

func priorityWeight(p insight.Priority) int {
	switch p {
	case insight.PriorityHigh:
		return 3
	case insight.PriorityMedium:
		return 2
	default:
		return 1
	}
}
