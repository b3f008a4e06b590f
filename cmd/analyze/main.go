// cmd/analyze/main.go

// Command analyze runs a single Share of Voice analysis from the terminal
// and writes the report to local files. It needs no database and no event
// bus; collectors, scoring and export run in-process.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"sovlens/internal/adapter/export"
	"sovlens/internal/config"
	domainanalysis "sovlens/internal/domain/analysis"
	"sovlens/internal/domain/sov"
	"sovlens/internal/pkg/logger"
	"sovlens/internal/service/analysis"
	"sovlens/internal/service/collector"
	insightsvc "sovlens/internal/service/insight"
	"sovlens/internal/service/scoring"
)

func main() {
	keywordsFlag := flag.String("keywords", "", "comma-separated keywords to analyze (default: configured primary keywords)")
	platformsFlag := flag.String("platforms", "", "comma-separated platforms to collect from (search, video; default: all configured)")
	maxResults := flag.Int("max-results", 0, "maximum results per keyword per platform (default: configured limits)")
	formatFlag := flag.String("format", "", "export format: csv, json or both (default: configured format)")
	outputDir := flag.String("output-dir", "", "report output directory (default: configured directory)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *formatFlag == "" {
		*formatFlag = cfg.Export.Format
	}
	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		log.Fatal("invalid format", "error", err)
	}
	if *outputDir == "" {
		*outputDir = cfg.Export.OutputDir
	}

	aggregator, err := buildAggregator(cfg.Analysis, log)
	if err != nil {
		log.Fatal("building scoring pipeline", "error", err)
	}

	collectors := buildCollectors(cfg.Collector)
	if len(collectors) == 0 {
		log.Fatal("no collector API keys configured, set SERPAPI_API_KEY or YOUTUBE_API_KEY")
	}

	runner := analysis.NewRunner(
		collectors,
		aggregator,
		insightsvc.NewGenerator(cfg.Analysis.TargetBrand),
		nil,
		nil,
		analysis.RunnerConfig{
			TargetBrand:       cfg.Analysis.TargetBrand,
			Brands:            append([]string{cfg.Analysis.TargetBrand}, cfg.Analysis.CompetitorBrands...),
			DefaultKeywords:   cfg.Collector.PrimaryKeywords,
			DefaultMaxResults: cfg.Collector.GoogleResultsCount,
			EventsTopic:       cfg.Analysis.EventsTopic,
		},
		log,
	)

	req := domainanalysis.Request{
		Keywords:   splitFlag(*keywordsFlag),
		Platforms:  splitFlag(*platformsFlag),
		MaxResults: *maxResults,
	}

	out, err := runner.Execute(context.Background(), req)
	if err != nil {
		log.Fatal("analysis failed", "error", err)
	}

	printSummary(out, cfg.Analysis.TargetBrand)

	writer := export.NewWriter(*outputDir, format)
	paths, err := writer.Write(export.Report{
		Run:      out.Run,
		Position: out.Position,
		Scores:   out.Result.ScoreList(),
		Insights: out.Insights,
	})
	if err != nil {
		log.Fatal("exporting report", "error", err)
	}

	for _, path := range paths {
		fmt.Printf("wrote %s\n", path)
	}
}

func printSummary(out *analysis.RunOutput, targetBrand string) {
	fmt.Printf("run %s: %d items, %d warnings\n", out.Run.ID, out.Run.ItemCount, len(out.Run.Warnings))

	if pos := out.Position; pos.TotalBrands > 0 {
		fmt.Printf("%s ranks #%d of %d brands with %.1f%% share", pos.TargetBrand, pos.TargetRank, pos.TotalBrands, pos.TargetShare*100)
		if pos.Leader != "" && pos.Leader != pos.TargetBrand {
			fmt.Printf(", %.1f points behind %s", pos.GapToLeader*100, pos.Leader)
		}
		fmt.Println()
	}

	for _, score := range out.Result.ScoreList() {
		marker := " "
		if score.Brand == targetBrand {
			marker = "*"
		}
		fmt.Printf("%s %-20s %-8s share=%5.1f%% mentions=%d avg_rank=%.1f sentiment=%+.2f\n",
			marker, score.Brand, score.Platform,
			score.NormalizedShare*100, score.MentionCount,
			score.AverageRank, score.AverageSentiment,
		)
	}

	for _, ins := range out.Insights {
		fmt.Printf("[%s] %s: %s\n", ins.Priority, ins.Description, ins.Recommendation)
	}
}

func buildAggregator(cfg config.AnalysisConfig, log *logger.Logger) (*scoring.Aggregator, error) {
	lexicon := scoring.NewBrandLexicon(scoring.LexiconConfig{
		TargetBrand:      cfg.TargetBrand,
		CompetitorBrands: cfg.CompetitorBrands,
	})

	detector, err := scoring.NewMentionDetector(lexicon, cfg.FuzzyThreshold)
	if err != nil {
		return nil, fmt.Errorf("creating mention detector: %w", err)
	}

	weights, err := scoring.NewWeightModel(sov.WeightConfig{
		Rank:       cfg.RankWeight,
		Engagement: cfg.EngagementWeight,
		Mention:    cfg.MentionWeight,
		Sentiment:  cfg.SentimentWeight,
	})
	if err != nil {
		return nil, fmt.Errorf("creating weight model: %w", err)
	}

	return scoring.NewAggregator(
		detector,
		scoring.NewSentimentScorer(scoring.DefaultDomainAdjustments()),
		weights,
		scoring.AggregatorConfig{
			Concurrency:         cfg.Concurrency,
			NormalizeEngagement: cfg.NormalizeEngagement,
		},
		log,
	), nil
}

func buildCollectors(cfg config.CollectorConfig) []collector.Collector {
	var collectors []collector.Collector
	if cfg.SerpAPIKey != "" {
		collectors = append(collectors, collector.NewGoogleCollector(collector.GoogleConfig{
			APIKey:   cfg.SerpAPIKey,
			Region:   cfg.Region,
			Language: cfg.Language,
		}))
	}
	if cfg.YouTubeAPIKey != "" {
		collectors = append(collectors, collector.NewYouTubeCollector(collector.YouTubeConfig{
			APIKey: cfg.YouTubeAPIKey,
			Region: cfg.Region,
		}))
	}
	return collectors
}

func splitFlag(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
