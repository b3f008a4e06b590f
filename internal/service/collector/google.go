package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sovlens/internal/domain/sov"
)

// GoogleCollector fetches organic search results through a SERP API.
type GoogleCollector struct {
	apiKey     string
	baseURL    string
	region     string
	language   string
	httpClient *http.Client
}

// GoogleConfig configures the search collector.
type GoogleConfig struct {
	APIKey   string
	BaseURL  string
	Region   string
	Language string
	Timeout  time.Duration
}

type serpResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Source   string `json:"source"`
	} `json:"organic_results"`
}

// NewGoogleCollector creates a search collector. BaseURL defaults to the
// SerpAPI endpoint.
func NewGoogleCollector(cfg GoogleConfig) *GoogleCollector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://serpapi.com/search.json"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &GoogleCollector{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		region:     cfg.Region,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name implements Collector.
func (c *GoogleCollector) Name() string { return "google" }

// Platform implements Collector.
func (c *GoogleCollector) Platform() sov.Platform { return sov.PlatformSearch }

// Collect fetches one page of organic results for the keyword.
func (c *GoogleCollector) Collect(ctx context.Context, keyword string, max int) ([]sov.PlatformItem, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("google collector: API key not configured")
	}

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(max))
	if c.region != "" {
		params.Set("gl", strings.ToLower(c.region))
	}
	if c.language != "" {
		params.Set("hl", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google collector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google collector: search API returned status %d", resp.StatusCode)
	}

	var parsed serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("google collector: decoding response: %w", err)
	}

	now := time.Now().UTC()
	items := make([]sov.PlatformItem, 0, len(parsed.OrganicResults))
	for i, r := range parsed.OrganicResults {
		if len(items) >= max {
			break
		}
		rank := r.Position
		if rank < 1 {
			rank = i + 1
		}
		items = append(items, sov.PlatformItem{
			// Keyed by list index, not rank: the API may omit position and
			// the rank fallback could collide with an explicit one.
			ID:          fmt.Sprintf("google:%s:%d", keyword, i+1),
			Platform:    sov.PlatformSearch,
			Rank:        rank,
			Title:       r.Title,
			Text:        strings.TrimSpace(r.Title + " " + r.Snippet),
			URL:         r.Link,
			Keyword:     keyword,
			Engagement:  searchEngagement(r.Link, len(r.Snippet)),
			CollectedAt: now,
		})
	}
	return items, nil
}

// searchEngagement estimates engagement for a search result from domain
// authority and snippet richness, in [0.5, 1.5]. Search APIs expose no
// interaction counts, so this heuristic stands in for them.
func searchEngagement(link string, snippetLen int) float64 {
	weight := 1.0
	domain := resultDomain(link)

	switch {
	case containsAny(domain, "youtube.com", "amazon.", "flipkart.", "wikipedia", "news", "times", "ndtv"):
		weight *= 1.2
	case containsAny(domain, "quora.", "reddit.", "medium.", "linkedin."):
		weight *= 1.1
	case containsAny(domain, "shop", "store", "buy", "price", "review"):
		weight *= 1.15
	}

	if snippetLen > 150 {
		weight *= 1.05
	} else if snippetLen > 0 && snippetLen < 50 {
		weight *= 0.95
	}

	if weight < 0.5 {
		return 0.5
	}
	if weight > 1.5 {
		return 1.5
	}
	return weight
}

func resultDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return strings.ToLower(link)
	}
	return strings.ToLower(u.Host)
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
