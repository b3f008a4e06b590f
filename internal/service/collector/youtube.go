package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sovlens/internal/domain/sov"
)

// YouTubeCollector fetches video search results and their statistics from
// the YouTube Data API v3.
type YouTubeCollector struct {
	apiKey     string
	baseURL    string
	region     string
	httpClient *http.Client
}

// YouTubeConfig configures the video collector.
type YouTubeConfig struct {
	APIKey  string
	BaseURL string
	Region  string
	Timeout time.Duration
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// NewYouTubeCollector creates a video collector. BaseURL defaults to the
// public Data API endpoint.
func NewYouTubeCollector(cfg YouTubeConfig) *YouTubeCollector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &YouTubeCollector{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		region:     cfg.Region,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name implements Collector.
func (c *YouTubeCollector) Name() string { return "youtube" }

// Platform implements Collector.
func (c *YouTubeCollector) Platform() sov.Platform { return sov.PlatformVideo }

// Collect searches for videos matching the keyword, then resolves their
// statistics in one batched videos.list call. Rank follows search result
// order.
func (c *YouTubeCollector) Collect(ctx context.Context, keyword string, max int) ([]sov.PlatformItem, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("youtube collector: API key not configured")
	}

	ids, err := c.search(ctx, keyword, max)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	details, err := c.videos(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]sov.PlatformItem, 0, len(ids))
	for i, id := range ids {
		v, ok := details[id]
		if !ok {
			continue
		}
		items = append(items, sov.PlatformItem{
			ID:          id,
			Platform:    sov.PlatformVideo,
			Rank:        i + 1,
			Title:       v.title,
			Text:        strings.TrimSpace(v.title + " " + v.description),
			URL:         "https://www.youtube.com/watch?v=" + id,
			Keyword:     keyword,
			Engagement:  videoEngagement(v.views, v.likes, v.comments, v.durationSeconds),
			CollectedAt: now,
		})
	}
	return items, nil
}

type videoDetails struct {
	title           string
	description     string
	views           int64
	likes           int64
	comments        int64
	durationSeconds int
}

func (c *YouTubeCollector) search(ctx context.Context, keyword string, max int) ([]string, error) {
	params := url.Values{}
	params.Set("part", "id")
	params.Set("type", "video")
	params.Set("q", keyword)
	params.Set("maxResults", strconv.Itoa(max))
	params.Set("key", c.apiKey)
	if c.region != "" {
		params.Set("regionCode", strings.ToUpper(c.region))
	}

	var parsed youtubeSearchResponse
	if err := c.get(ctx, "/search", params, &parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

func (c *YouTubeCollector) videos(ctx context.Context, ids []string) (map[string]videoDetails, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", c.apiKey)

	var parsed youtubeVideosResponse
	if err := c.get(ctx, "/videos", params, &parsed); err != nil {
		return nil, err
	}

	details := make(map[string]videoDetails, len(parsed.Items))
	for _, item := range parsed.Items {
		details[item.ID] = videoDetails{
			title:           item.Snippet.Title,
			description:     item.Snippet.Description,
			views:           parseCount(item.Statistics.ViewCount),
			likes:           parseCount(item.Statistics.LikeCount),
			comments:        parseCount(item.Statistics.CommentCount),
			durationSeconds: parseISODuration(item.ContentDetails.Duration),
		}
	}
	return details, nil
}

func (c *YouTubeCollector) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube collector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube collector: API returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube collector: decoding %s response: %w", path, err)
	}
	return nil
}

// videoEngagement folds views, likes and comments into one composite.
// Comments weigh double likes since they indicate a more engaged audience,
// and duration nudges the total: substantial videos up, shorts down.
func videoEngagement(views, likes, comments int64, durationSeconds int) float64 {
	composite := float64(views) + 10*float64(likes) + 20*float64(comments)

	switch {
	case durationSeconds > 180:
		composite *= 1.1
	case durationSeconds > 0 && durationSeconds < 60:
		composite *= 0.9
	}
	return composite
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts YouTube's ISO 8601 durations (PT4M13S,
// PT1H2M30S) to seconds. Unparseable input yields 0.
func parseISODuration(s string) int {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}
