package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

// setupTestDB подключает in-memory sqlite и чистит таблицы между тестами
func setupTestDB(t *testing.T) {
	t.Helper()
	if db.ORM == nil {
		require.NoError(t, db.ConnectTestDB())
	}
	for _, table := range []string{"credit_entries", "feed_reports", "feed_saves", "feed_items", "user_tokens", "users"} {
		require.NoError(t, db.ORM.Exec("DELETE FROM "+table).Error)
	}
}

func createTestUser(t *testing.T) *models.User {
	t.Helper()
	user, err := models.NewUser(
		fmt.Sprintf("user_%d", time.Now().UnixNano()),
		gofakeit.Email(),
		"testpassword",
	)
	require.NoError(t, err)
	require.NoError(t, db.ORM.Create(user).Error)
	return user
}

func createTestFeedItem(t *testing.T, source models.FeedSource, sourceID string, ts time.Time) *models.FeedItem {
	t.Helper()
	item := models.NewFeedItem(models.RawPost{
		SourceID:   sourceID,
		Source:     source,
		Content:    gofakeit.Sentence(8),
		AuthorID:   gofakeit.Username(),
		AuthorName: gofakeit.Name(),
		URL:        gofakeit.URL(),
		Timestamp:  ts,
	}, time.Now())
	require.NoError(t, db.ORM.Create(item).Error)
	return item
}

// fakeConnector - коннектор с фиксированным ответом и счетчиком вызовов
type fakeConnector struct {
	source models.FeedSource
	posts  []models.RawPost
	err    error
	calls  int32
}

func (fc *fakeConnector) Source() models.FeedSource {
	return fc.source
}

func (fc *fakeConnector) Fetch(ctx context.Context) ([]models.RawPost, error) {
	atomic.AddInt32(&fc.calls, 1)
	if fc.err != nil {
		return nil, fc.err
	}
	return fc.posts, nil
}

func (fc *fakeConnector) callCount() int32 {
	return atomic.LoadInt32(&fc.calls)
}

func rawPosts(source models.FeedSource, n int) []models.RawPost {
	posts := make([]models.RawPost, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, models.RawPost{
			SourceID:  fmt.Sprintf("%s-%d", source, i),
			Source:    source,
			Content:   gofakeit.Sentence(6),
			AuthorID:  gofakeit.Username(),
			Timestamp: time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
	return posts
}
