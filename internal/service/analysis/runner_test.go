package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovlens/internal/domain/analysis"
	domaininsight "sovlens/internal/domain/insight"
	"sovlens/internal/domain/sov"
	"sovlens/internal/service/collector"
	insightsvc "sovlens/internal/service/insight"
	"sovlens/internal/service/scoring"
)

type stubCollector struct {
	name     string
	platform sov.Platform
	items    []sov.PlatformItem
	err      error
}

func (c *stubCollector) Name() string           { return c.name }
func (c *stubCollector) Platform() sov.Platform { return c.platform }

func (c *stubCollector) Collect(_ context.Context, keyword string, _ int) ([]sov.PlatformItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	items := make([]sov.PlatformItem, len(c.items))
	for i, item := range c.items {
		item.Keyword = keyword
		items[i] = item
	}
	return items, nil
}

type memoryStore struct {
	mu       sync.Mutex
	runs     map[string]analysis.Run
	scores   map[string][]sov.Score
	insights map[string][]domaininsight.Insight
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		runs:     make(map[string]analysis.Run),
		scores:   make(map[string][]sov.Score),
		insights: make(map[string][]domaininsight.Insight),
	}
}

func (m *memoryStore) SaveRun(_ context.Context, run analysis.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *memoryStore) UpdateRun(_ context.Context, run analysis.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return fmt.Errorf("run %s not found", run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

func (m *memoryStore) GetRun(_ context.Context, id string) (*analysis.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return &run, nil
}

func (m *memoryStore) ListRuns(_ context.Context, filter analysis.Filter) ([]analysis.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []analysis.Run
	for _, run := range m.runs {
		if filter.Status != "" && run.Status != filter.Status {
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (m *memoryStore) SaveScores(_ context.Context, runID string, scores []sov.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[runID] = scores
	return nil
}

func (m *memoryStore) GetScores(_ context.Context, runID string) ([]sov.Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[runID], nil
}

func (m *memoryStore) SaveInsights(_ context.Context, runID string, insights []domaininsight.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insights[runID] = insights
	return nil
}

func (m *memoryStore) GetInsights(_ context.Context, runID string) ([]domaininsight.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insights[runID], nil
}

func newTestAggregator(t *testing.T) *scoring.Aggregator {
	t.Helper()

	lexicon := scoring.NewBrandLexicon(scoring.LexiconConfig{
		TargetBrand:      "Atomberg",
		CompetitorBrands: []string{"CompetitorX"},
	})
	detector, err := scoring.NewMentionDetector(lexicon, scoring.DefaultFuzzyThreshold)
	require.NoError(t, err)

	weights, err := scoring.NewWeightModel(scoring.DefaultWeights())
	require.NoError(t, err)

	return scoring.NewAggregator(
		detector,
		scoring.NewSentimentScorer(nil),
		weights,
		scoring.AggregatorConfig{Concurrency: 2},
		nil,
	)
}

func searchItems() []sov.PlatformItem {
	now := time.Now().UTC()
	return []sov.PlatformItem{
		{
			ID:          "google:1",
			Platform:    sov.PlatformSearch,
			Rank:        1,
			Title:       "Atomberg smart fan review",
			Text:        "Atomberg smart fan review. Excellent build quality, highly recommend.",
			Engagement:  1.0,
			CollectedAt: now,
		},
		{
			ID:          "google:2",
			Platform:    sov.PlatformSearch,
			Rank:        2,
			Title:       "CompetitorX ceiling fan",
			Text:        "CompetitorX ceiling fan lineup for 2026.",
			Engagement:  0.8,
			CollectedAt: now,
		},
	}
}

func TestExecuteCompletesRunAndPersistsOutputs(t *testing.T) {
	store := newMemoryStore()
	c := &stubCollector{name: "google_search", platform: sov.PlatformSearch, items: searchItems()}

	runner := NewRunner(
		[]collector.Collector{c},
		newTestAggregator(t),
		insightsvc.NewGenerator("Atomberg"),
		store,
		nil,
		RunnerConfig{
			TargetBrand:     "Atomberg",
			Brands:          []string{"Atomberg", "CompetitorX"},
			DefaultKeywords: []string{"smart fan"},
			EventsTopic:     "sov",
		},
		nil,
	)

	out, err := runner.Execute(context.Background(), analysis.Request{})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, analysis.StatusCompleted, out.Run.Status)
	assert.Equal(t, 2, out.Run.ItemCount)
	assert.NotNil(t, out.Run.CompletedAt)
	assert.Equal(t, []string{"smart fan"}, out.Run.Keywords)

	assert.Equal(t, "Atomberg", out.Position.TargetBrand)
	assert.Equal(t, 2, out.Position.TotalBrands)
	assert.Equal(t, 1, out.Position.TargetRank)
	assert.Equal(t, "Atomberg", out.Position.Leader)

	stored, err := store.GetRun(context.Background(), out.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusCompleted, stored.Status)

	scores, err := store.GetScores(context.Background(), out.Run.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, scores)
}

func TestExecuteRecordsCollectorFailureAsWarning(t *testing.T) {
	store := newMemoryStore()
	healthy := &stubCollector{name: "google_search", platform: sov.PlatformSearch, items: searchItems()}
	broken := &stubCollector{name: "youtube", platform: sov.PlatformVideo, err: errors.New("quota exceeded")}

	runner := NewRunner(
		[]collector.Collector{healthy, broken},
		newTestAggregator(t),
		insightsvc.NewGenerator("Atomberg"),
		store,
		nil,
		RunnerConfig{
			TargetBrand:     "Atomberg",
			Brands:          []string{"Atomberg", "CompetitorX"},
			DefaultKeywords: []string{"smart fan"},
			EventsTopic:     "sov",
		},
		nil,
	)

	out, err := runner.Execute(context.Background(), analysis.Request{})
	require.NoError(t, err)

	assert.Equal(t, analysis.StatusCompleted, out.Run.Status)
	require.Len(t, out.Run.Warnings, 1)
	assert.Contains(t, out.Run.Warnings[0].ItemID, "youtube")
	assert.Contains(t, out.Run.Warnings[0].Reason, "quota exceeded")
}

func TestStartRunReturnsPendingRun(t *testing.T) {
	store := newMemoryStore()
	c := &stubCollector{name: "google_search", platform: sov.PlatformSearch, items: searchItems()}

	runner := NewRunner(
		[]collector.Collector{c},
		newTestAggregator(t),
		insightsvc.NewGenerator("Atomberg"),
		store,
		nil,
		RunnerConfig{
			TargetBrand:     "Atomberg",
			Brands:          []string{"Atomberg", "CompetitorX"},
			DefaultKeywords: []string{"smart fan"},
			EventsTopic:     "sov",
		},
		nil,
	)

	run, err := runner.StartRun(context.Background(), analysis.Request{Keywords: []string{"BLDC fan"}})
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, analysis.StatusPending, run.Status)
	assert.Equal(t, []string{"BLDC fan"}, run.Keywords)

	require.Eventually(t, func() bool {
		stored, err := store.GetRun(context.Background(), run.ID)
		return err == nil && stored.Status == analysis.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}
