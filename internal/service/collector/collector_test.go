package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovlens/internal/domain/sov"
)

func TestParseISODuration(t *testing.T) {
	assert.Equal(t, 253, parseISODuration("PT4M13S"))
	assert.Equal(t, 3750, parseISODuration("PT1H2M30S"))
	assert.Equal(t, 45, parseISODuration("PT45S"))
	assert.Equal(t, 0, parseISODuration(""))
	assert.Equal(t, 0, parseISODuration("not-a-duration"))
}

func TestVideoEngagementWeighsCommentsOverLikes(t *testing.T) {
	likesHeavy := videoEngagement(1000, 100, 0, 120)
	commentsHeavy := videoEngagement(1000, 0, 100, 120)
	assert.Greater(t, commentsHeavy, likesHeavy)
}

func TestVideoEngagementDurationBonus(t *testing.T) {
	long := videoEngagement(1000, 10, 10, 300)
	short := videoEngagement(1000, 10, 10, 30)
	assert.Greater(t, long, short)
}

func TestSearchEngagementBounds(t *testing.T) {
	assert.LessOrEqual(t, searchEngagement("https://www.youtube.com/watch?v=abc", 300), 1.5)
	assert.GreaterOrEqual(t, searchEngagement("https://example.com", 10), 0.5)
}

func TestGoogleCollectorParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "smart fan", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"position": 1, "title": "Atomberg smart fan", "link": "https://atomberg.com", "snippet": "BLDC fans"},
				{"position": 2, "title": "Best smart fans", "link": "https://example.com/review", "snippet": "roundup"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewGoogleCollector(GoogleConfig{APIKey: "test", BaseURL: srv.URL, Region: "IN", Language: "en"})

	items, err := c.Collect(context.Background(), "smart fan", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, sov.PlatformSearch, items[0].Platform)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, "Atomberg smart fan BLDC fans", items[0].Text)
	assert.Equal(t, "smart fan", items[0].Keyword)
	assert.Positive(t, items[0].Engagement)
}

func TestGoogleCollectorAssignsUniqueIDsWithoutPositions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// Second result carries no position, so its rank falls back to the
		// list index and would collide with the first result's rank.
		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"position": 2, "title": "Atomberg smart fan", "link": "https://atomberg.com", "snippet": "BLDC fans"},
				{"title": "Best smart fans", "link": "https://example.com/review", "snippet": "roundup"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewGoogleCollector(GoogleConfig{APIKey: "test", BaseURL: srv.URL})

	items, err := c.Collect(context.Background(), "smart fan", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 2, items[0].Rank)
	assert.Equal(t, 2, items[1].Rank)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestGoogleCollectorRequiresAPIKey(t *testing.T) {
	c := NewGoogleCollector(GoogleConfig{})
	_, err := c.Collect(context.Background(), "smart fan", 10)
	require.Error(t, err)
}

func TestYouTubeCollectorParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			_, _ = w.Write([]byte(`{"items": [{"id": {"videoId": "abc123"}}]}`))
		case "/videos":
			assert.Equal(t, "abc123", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{
				"items": [{
					"id": "abc123",
					"snippet": {"title": "Atomberg fan review", "description": "long term review", "channelTitle": "Tech"},
					"contentDetails": {"duration": "PT10M2S"},
					"statistics": {"viewCount": "150000", "likeCount": "2000", "commentCount": "300"}
				}]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewYouTubeCollector(YouTubeConfig{APIKey: "test", BaseURL: srv.URL})

	items, err := c.Collect(context.Background(), "smart fan review", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "abc123", items[0].ID)
	assert.Equal(t, sov.PlatformVideo, items[0].Platform)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, "Atomberg fan review long term review", items[0].Text)
	assert.Positive(t, items[0].Engagement)
}
