package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"creatorhub/config"
	"creatorhub/models"
)

const defaultTwitterBaseURL = "https://api.twitter.com"

// TwitterConnector забирает свежие твиты через recent search API
type TwitterConnector struct {
	client      HTTPClient
	baseURL     string
	bearerToken string
	query       string
	maxResults  int
}

func NewTwitterConnector(conf config.SourcesConfig) *TwitterConnector {
	baseURL := conf.Twitter.BaseURL
	if baseURL == "" {
		baseURL = defaultTwitterBaseURL
	}
	return &TwitterConnector{
		client:      &http.Client{},
		baseURL:     baseURL,
		bearerToken: conf.Twitter.BearerToken,
		query:       conf.Twitter.Query,
		maxResults:  conf.Twitter.MaxResults,
	}
}

// WithHTTPClient подменяет HTTP клиент (для тестов)
func (tc *TwitterConnector) WithHTTPClient(client HTTPClient) *TwitterConnector {
	tc.client = client
	return tc
}

func (tc *TwitterConnector) Source() models.FeedSource {
	return models.SourceTwitter
}

type tweetMetrics struct {
	LikeCount    int `json:"like_count"`
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
}

type tweet struct {
	ID            string        `json:"id"`
	Text          string        `json:"text"`
	AuthorID      string        `json:"author_id"`
	CreatedAt     time.Time     `json:"created_at"`
	PublicMetrics *tweetMetrics `json:"public_metrics"`
}

type tweetSearchResponse struct {
	Data []tweet `json:"data"`
}

// Fetch запрашивает recent search и нормализует твиты.
// Отсутствующие метрики считаются нулевыми.
func (tc *TwitterConnector) Fetch(ctx context.Context) ([]models.RawPost, error) {
	params := url.Values{}
	params.Set("query", tc.query)
	params.Set("max_results", strconv.Itoa(tc.maxResults))
	params.Set("tweet.fields", "created_at,public_metrics,author_id")

	reqURL := tc.baseURL + "/2/tweets/search/recent?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tc.bearerToken)

	resp, err := tc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed tweetSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse twitter response: %w", err)
	}

	posts := make([]models.RawPost, 0, len(parsed.Data))
	for _, t := range parsed.Data {
		metrics := t.PublicMetrics
		if metrics == nil {
			metrics = &tweetMetrics{}
		}
		posts = append(posts, models.RawPost{
			SourceID:   t.ID,
			Source:     models.SourceTwitter,
			Content:    t.Text,
			AuthorID:   t.AuthorID,
			AuthorName: twitterDisplayName(t.AuthorID),
			URL:        "https://twitter.com/i/web/status/" + t.ID,
			Likes:      metrics.LikeCount,
			Shares:     metrics.RetweetCount,
			Comments:   metrics.ReplyCount,
			Timestamp:  t.CreatedAt,
		})
	}
	return posts, nil
}

// twitterDisplayName строит отображаемое имя по author_id: search API
// не возвращает профиль без дополнительного запроса
func twitterDisplayName(authorID string) string {
	suffix := authorID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "Twitter User " + suffix
}
