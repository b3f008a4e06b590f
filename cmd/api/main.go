// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"sovlens/internal/adapter/storage"
	"sovlens/internal/config"
	"sovlens/internal/domain/sov"
	"sovlens/internal/pkg/logger"
	"sovlens/internal/server"
	"sovlens/internal/service/analysis"
	"sovlens/internal/service/collector"
	insightsvc "sovlens/internal/service/insight"
	"sovlens/internal/service/scoring"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
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

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatal("initializing database", "error", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS, log)
	if err != nil {
		log.Fatal("connecting to NATS", "error", err)
	}
	defer natsConn.Close()

	// Initialize storage adapter
	runStore := storage.NewRunStore(db)

	// Initialize scoring pipeline
	aggregator, err := buildAggregator(cfg.Analysis, log)
	if err != nil {
		log.Fatal("building scoring pipeline", "error", err)
	}

	// Initialize collectors
	collectors := buildCollectors(cfg.Collector)
	if len(collectors) == 0 {
		log.Warn("no collector API keys configured, runs will produce empty results")
	}

	// Initialize analysis runner
	runner := analysis.NewRunner(
		collectors,
		aggregator,
		insightsvc.NewGenerator(cfg.Analysis.TargetBrand),
		runStore,
		natsConn,
		analysis.RunnerConfig{
			TargetBrand:       cfg.Analysis.TargetBrand,
			Brands:            brandUniverse(cfg.Analysis),
			DefaultKeywords:   cfg.Collector.PrimaryKeywords,
			DefaultMaxResults: cfg.Collector.GoogleResultsCount,
			EventsTopic:       cfg.Analysis.EventsTopic,
		},
		log,
	)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		cfg.Analysis,
		natsConn,
		runner,
		log,
	)

	// Start HTTP server
	go func() {
		log.Info("starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	log.Info("shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log *logger.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// buildAggregator wires the lexicon, detector, scorer and weight model
// into a Share of Voice aggregator.
func buildAggregator(cfg config.AnalysisConfig, log *logger.Logger) (*scoring.Aggregator, error) {
	lexicon := scoring.NewBrandLexicon(scoring.LexiconConfig{
		TargetBrand:      cfg.TargetBrand,
		CompetitorBrands: cfg.CompetitorBrands,
	})

	detector, err := scoring.NewMentionDetector(lexicon, cfg.FuzzyThreshold)
	if err != nil {
		return nil, fmt.Errorf("creating mention detector: %w", err)
	}

	weights, err := scoring.NewWeightModel(sovWeights(cfg))
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

// buildCollectors returns one collector per configured platform API key.
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

func sovWeights(cfg config.AnalysisConfig) sov.WeightConfig {
	return sov.WeightConfig{
		Rank:       cfg.RankWeight,
		Engagement: cfg.EngagementWeight,
		Mention:    cfg.MentionWeight,
		Sentiment:  cfg.SentimentWeight,
	}
}

func brandUniverse(cfg config.AnalysisConfig) []string {
	return append([]string{cfg.TargetBrand}, cfg.CompetitorBrands...)
}
