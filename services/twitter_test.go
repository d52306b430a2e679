package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creatorhub/config"
	"creatorhub/models"

	"github.com/stretchr/testify/require"
)

func twitterTestConfig(baseURL string) config.SourcesConfig {
	conf := config.SourcesConfig{}
	conf.Twitter.BaseURL = baseURL
	conf.Twitter.BearerToken = "test-bearer"
	conf.Twitter.Query = "creator economy"
	conf.Twitter.MaxResults = 10
	return conf
}

func TestTwitterFetchNormalizesTweets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		require.Equal(t, "Bearer test-bearer", r.Header.Get("Authorization"))
		require.Equal(t, "creator economy", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{
					"id": "1790000000000000001",
					"text": "the creator economy is eating the world",
					"author_id": "987654321",
					"created_at": "2025-05-13T10:00:00Z",
					"public_metrics": {"like_count": 12, "retweet_count": 4, "reply_count": 3}
				},
				{
					"id": "1790000000000000002",
					"text": "no metrics on this one",
					"author_id": "12",
					"created_at": "2025-05-13T11:00:00Z"
				}
			]
		}`))
	}))
	defer server.Close()

	tc := NewTwitterConnector(twitterTestConfig(server.URL))
	posts, err := tc.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	require.Equal(t, "1790000000000000001", first.SourceID)
	require.Equal(t, models.SourceTwitter, first.Source)
	require.Equal(t, "the creator economy is eating the world", first.Content)
	require.Equal(t, "Twitter User 4321", first.AuthorName)
	require.Equal(t, "https://twitter.com/i/web/status/1790000000000000001", first.URL)
	require.Equal(t, 12, first.Likes)
	require.Equal(t, 4, first.Shares)
	require.Equal(t, 3, first.Comments)
	require.Equal(t, time.Date(2025, 5, 13, 10, 0, 0, 0, time.UTC), first.Timestamp)

	// Отсутствующие метрики нормализуются в нули
	second := posts[1]
	require.Equal(t, 0, second.Likes)
	require.Equal(t, 0, second.Shares)
	require.Equal(t, "Twitter User 12", second.AuthorName)
}

func TestTwitterFetchEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	tc := NewTwitterConnector(twitterTestConfig(server.URL))
	posts, err := tc.Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestTwitterFetchFailsOnRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	tc := NewTwitterConnector(twitterTestConfig(server.URL))
	_, err := tc.Fetch(context.Background())
	require.Error(t, err)
}
