package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"creatorhub/config"
	"creatorhub/models"
)

const (
	defaultRedditAuthURL = "https://www.reddit.com"
	defaultRedditBaseURL = "https://oauth.reddit.com"
	redditUserAgent      = "CreatorHub/1.0"
)

// RedditConnector забирает hot-посты сабреддита. Токен получается
// через client_credentials на каждый проход - отдельного хранилища
// токенов не требуется при часовом интервале обновления.
type RedditConnector struct {
	client       HTTPClient
	authURL      string
	baseURL      string
	clientID     string
	clientSecret string
	subreddit    string
	limit        int
}

func NewRedditConnector(conf config.SourcesConfig) *RedditConnector {
	authURL := conf.Reddit.AuthURL
	if authURL == "" {
		authURL = defaultRedditAuthURL
	}
	baseURL := conf.Reddit.BaseURL
	if baseURL == "" {
		baseURL = defaultRedditBaseURL
	}
	return &RedditConnector{
		client:       &http.Client{},
		authURL:      authURL,
		baseURL:      baseURL,
		clientID:     conf.Reddit.ClientID,
		clientSecret: conf.Reddit.ClientSecret,
		subreddit:    conf.Reddit.Subreddit,
		limit:        conf.Reddit.Limit,
	}
}

// WithHTTPClient подменяет HTTP клиент (для тестов)
func (rc *RedditConnector) WithHTTPClient(client HTTPClient) *RedditConnector {
	rc.client = client
	return rc
}

func (rc *RedditConnector) Source() models.FeedSource {
	return models.SourceReddit
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Thumbnail   string  `json:"thumbnail"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch выполняет обмен client_credentials и запрашивает hot-посты
func (rc *RedditConnector) Fetch(ctx context.Context) ([]models.RawPost, error) {
	token, err := rc.exchangeToken(ctx)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/r/%s/hot?limit=%d", rc.baseURL, rc.subreddit, rc.limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse reddit listing: %w", err)
	}

	posts := make([]models.RawPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		content := p.Title
		if p.Selftext != "" {
			content += "\n\n" + p.Selftext
		}
		mediaURL := ""
		if p.Thumbnail != "" && p.Thumbnail != "self" {
			mediaURL = p.Thumbnail
		}
		posts = append(posts, models.RawPost{
			SourceID:         p.ID,
			Source:           models.SourceReddit,
			Content:          content,
			AuthorID:         p.Author,
			AuthorName:       p.Author,
			AuthorProfileURL: "https://www.reddit.com/user/" + p.Author,
			MediaURL:         mediaURL,
			URL:              "https://www.reddit.com" + p.Permalink,
			Likes:            p.Ups,
			Comments:         p.NumComments,
			Timestamp:        time.Unix(int64(p.CreatedUTC), 0).UTC(),
		})
	}
	return posts, nil
}

func (rc *RedditConnector) exchangeToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		rc.authURL+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(rc.clientID + ":" + rc.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reddit token exchange returned HTTP %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("reddit token exchange returned empty token")
	}
	return tokenResp.AccessToken, nil
}
