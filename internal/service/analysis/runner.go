package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"sovlens/internal/domain/analysis"
	domaininsight "sovlens/internal/domain/insight"
	"sovlens/internal/domain/sov"
	"sovlens/internal/pkg/logger"
	"sovlens/internal/service/collector"
	insightsvc "sovlens/internal/service/insight"
)

// RunStore defines storage for analysis runs and their outputs.
type RunStore interface {
	SaveRun(ctx context.Context, run analysis.Run) error
	UpdateRun(ctx context.Context, run analysis.Run) error
	GetRun(ctx context.Context, id string) (*analysis.Run, error)
	ListRuns(ctx context.Context, filter analysis.Filter) ([]analysis.Run, error)
	SaveScores(ctx context.Context, runID string, scores []sov.Score) error
	GetScores(ctx context.Context, runID string) ([]sov.Score, error)
	SaveInsights(ctx context.Context, runID string, insights []domaininsight.Insight) error
	GetInsights(ctx context.Context, runID string) ([]domaininsight.Insight, error)
}

// RunnerConfig contains configuration for the analysis runner.
type RunnerConfig struct {
	TargetBrand       string
	Brands            []string
	DefaultKeywords   []string
	DefaultMaxResults int
	EventsTopic       string
}

// Runner orchestrates one analysis run end to end: collect platform items,
// aggregate Share of Voice, derive insights, persist, and publish run
// events.
type Runner struct {
	collectors []collector.Collector
	aggregator sov.Aggregator
	generator  *insightsvc.Generator
	store      RunStore
	eventBus   *nats.Conn
	config     RunnerConfig
	log        *logger.Logger
}

// NewRunner creates an analysis runner. The store and event bus may be nil
// for one-shot invocations that neither persist nor publish.
func NewRunner(
	collectors []collector.Collector,
	aggregator sov.Aggregator,
	generator *insightsvc.Generator,
	store RunStore,
	eventBus *nats.Conn,
	config RunnerConfig,
	log *logger.Logger,
) *Runner {
	if config.DefaultMaxResults < 1 {
		config.DefaultMaxResults = 30
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		collectors: collectors,
		aggregator: aggregator,
		generator:  generator,
		store:      store,
		eventBus:   eventBus,
		config:     config,
		log:        log,
	}
}

// RunOutput bundles everything one run produces.
type RunOutput struct {
	Run      analysis.Run
	Result   *sov.Result
	Position domaininsight.CompetitivePosition
	Insights []domaininsight.Insight
}

// StartRun registers a new run and executes it in the background. The
// returned run is in pending state; progress is observable through the
// store and the event bus.
func (r *Runner) StartRun(ctx context.Context, req analysis.Request) (*analysis.Run, error) {
	run := r.newRun(req)

	if r.store != nil {
		if err := r.store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
	}

	go func() {
		// The request context ends with the HTTP request; the run does not.
		if _, err := r.execute(context.Background(), run, req); err != nil {
			r.log.Error("analysis run failed", "run_id", run.ID, "error", err)
		}
	}()

	return &run, nil
}

// Execute runs an analysis synchronously and returns its full output.
func (r *Runner) Execute(ctx context.Context, req analysis.Request) (*RunOutput, error) {
	run := r.newRun(req)
	if r.store != nil {
		if err := r.store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
	}
	return r.execute(ctx, run, req)
}

// GetRun returns a run by ID.
func (r *Runner) GetRun(ctx context.Context, id string) (*analysis.Run, error) {
	return r.store.GetRun(ctx, id)
}

// ListRuns returns recent runs matching the filter.
func (r *Runner) ListRuns(ctx context.Context, filter analysis.Filter) ([]analysis.Run, error) {
	return r.store.ListRuns(ctx, filter)
}

// GetScores returns the score matrix of a completed run.
func (r *Runner) GetScores(ctx context.Context, runID string) ([]sov.Score, error) {
	return r.store.GetScores(ctx, runID)
}

// GetInsights returns the insights of a completed run.
func (r *Runner) GetInsights(ctx context.Context, runID string) ([]domaininsight.Insight, error) {
	return r.store.GetInsights(ctx, runID)
}

func (r *Runner) newRun(req analysis.Request) analysis.Run {
	keywords := req.Keywords
	if len(keywords) == 0 {
		keywords = r.config.DefaultKeywords
	}
	platforms := req.Platforms
	if len(platforms) == 0 {
		for _, c := range r.collectors {
			platforms = append(platforms, string(c.Platform()))
		}
	}
	return analysis.Run{
		ID:        uuid.New().String(),
		Status:    analysis.StatusPending,
		Keywords:  keywords,
		Platforms: platforms,
		StartedAt: time.Now().UTC(),
	}
}

func (r *Runner) execute(ctx context.Context, run analysis.Run, req analysis.Request) (*RunOutput, error) {
	run.Status = analysis.StatusRunning
	r.updateRun(ctx, run)

	maxResults := req.MaxResults
	if maxResults < 1 {
		maxResults = r.config.DefaultMaxResults
	}

	items, collectWarnings := r.collect(ctx, run.Keywords, run.Platforms, maxResults)
	run.ItemCount = len(items)

	result, err := r.aggregator.Aggregate(ctx, items, r.config.Brands)
	if err != nil {
		run.Status = analysis.StatusFailed
		run.Error = err.Error()
		run.Warnings = collectWarnings
		now := time.Now().UTC()
		run.CompletedAt = &now
		r.updateRun(ctx, run)
		r.publishEvent("failed", run)
		return nil, fmt.Errorf("aggregating run %s: %w", run.ID, err)
	}
	result.Warnings = append(collectWarnings, result.Warnings...)

	position := r.generator.Position(result)
	insights := r.generator.Generate(result)

	if r.store != nil {
		if err := r.store.SaveScores(ctx, run.ID, result.ScoreList()); err != nil {
			r.log.Error("saving scores", "run_id", run.ID, "error", err)
		}
		if err := r.store.SaveInsights(ctx, run.ID, insights); err != nil {
			r.log.Error("saving insights", "run_id", run.ID, "error", err)
		}
	}

	run.Status = analysis.StatusCompleted
	run.Warnings = result.Warnings
	now := time.Now().UTC()
	run.CompletedAt = &now
	r.updateRun(ctx, run)
	r.publishEvent("completed", run)

	r.log.Info("analysis run completed",
		"run_id", run.ID,
		"items", run.ItemCount,
		"scores", len(result.Scores),
		"insights", len(insights),
		"warnings", len(run.Warnings),
	)

	return &RunOutput{Run: run, Result: result, Position: position, Insights: insights}, nil
}

// collect gathers items from every requested collector and keyword. A
// failing collector is recorded as a warning and never aborts the run.
func (r *Runner) collect(ctx context.Context, keywords, platforms []string, maxResults int) ([]sov.PlatformItem, []sov.Warning) {
	requested := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		requested[p] = struct{}{}
	}

	var items []sov.PlatformItem
	var warnings []sov.Warning
	for _, c := range r.collectors {
		if len(requested) > 0 {
			if _, ok := requested[string(c.Platform())]; !ok {
				continue
			}
		}
		for _, keyword := range keywords {
			collected, err := c.Collect(ctx, keyword, maxResults)
			if err != nil {
				warnings = append(warnings, sov.Warning{
					ItemID: fmt.Sprintf("%s:%s", c.Name(), keyword),
					Reason: fmt.Sprintf("collect failed: %v", err),
				})
				r.log.Warn("collector failed", "collector", c.Name(), "keyword", keyword, "error", err)
				continue
			}
			items = append(items, collected...)
		}
	}
	return items, warnings
}

func (r *Runner) updateRun(ctx context.Context, run analysis.Run) {
	if r.store == nil {
		return
	}
	if err := r.store.UpdateRun(ctx, run); err != nil {
		r.log.Error("updating run", "run_id", run.ID, "error", err)
	}
}

// publishEvent publishes a run lifecycle event to the event bus.
func (r *Runner) publishEvent(kind string, run analysis.Run) {
	if r.eventBus == nil {
		return
	}
	data, err := json.Marshal(run)
	if err != nil {
		r.log.Error("marshaling run event", "run_id", run.ID, "error", err)
		return
	}
	topic := fmt.Sprintf("%s.run.%s", r.config.EventsTopic, kind)
	if err := r.eventBus.Publish(topic, data); err != nil {
		r.log.Error("publishing run event", "run_id", run.ID, "topic", topic, "error", err)
	}
}
