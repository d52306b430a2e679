package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	"github.com/stretchr/testify/require"
)

func TestIngestPersistsNewPosts(t *testing.T) {
	setupTestDB(t)

	is := NewIngestService(5 * time.Second)
	twitter := &fakeConnector{source: models.SourceTwitter, posts: rawPosts(models.SourceTwitter, 3)}
	reddit := &fakeConnector{source: models.SourceReddit, posts: rawPosts(models.SourceReddit, 2)}

	counts := is.Run(context.Background(), []SourceConnector{twitter, reddit})

	require.EqualValues(t, 3, counts[models.SourceTwitter])
	require.EqualValues(t, 2, counts[models.SourceReddit])

	var total int64
	require.NoError(t, db.ORM.Model(&models.FeedItem{}).Count(&total).Error)
	require.EqualValues(t, 5, total)
}

func TestIngestSkipsAlreadySeenPosts(t *testing.T) {
	setupTestDB(t)

	is := NewIngestService(5 * time.Second)
	posts := rawPosts(models.SourceTwitter, 3)
	twitter := &fakeConnector{source: models.SourceTwitter, posts: posts}

	counts := is.Run(context.Background(), []SourceConnector{twitter})
	require.EqualValues(t, 3, counts[models.SourceTwitter])

	// Повторный проход с теми же постами ничего не добавляет
	counts = is.Run(context.Background(), []SourceConnector{twitter})
	require.EqualValues(t, 0, counts[models.SourceTwitter])

	var total int64
	require.NoError(t, db.ORM.Model(&models.FeedItem{}).Count(&total).Error)
	require.EqualValues(t, 3, total)
}

func TestIngestDeduplicatesWithinBatch(t *testing.T) {
	setupTestDB(t)

	is := NewIngestService(5 * time.Second)
	posts := rawPosts(models.SourceReddit, 2)
	posts = append(posts, posts[0]) // дубль в одной пачке
	reddit := &fakeConnector{source: models.SourceReddit, posts: posts}

	counts := is.Run(context.Background(), []SourceConnector{reddit})
	require.EqualValues(t, 2, counts[models.SourceReddit])
}

func TestIngestConcurrentPassesKeepUniqueness(t *testing.T) {
	setupTestDB(t)

	is := NewIngestService(5 * time.Second)
	posts := rawPosts(models.SourceTwitter, 4)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := &fakeConnector{source: models.SourceTwitter, posts: posts}
			is.Run(context.Background(), []SourceConnector{conn})
		}()
	}
	wg.Wait()

	var total int64
	require.NoError(t, db.ORM.Model(&models.FeedItem{}).Count(&total).Error)
	require.EqualValues(t, 4, total)
}

func TestIngestDegradesFailedConnectorToEmpty(t *testing.T) {
	setupTestDB(t)

	is := NewIngestService(5 * time.Second)
	twitter := &fakeConnector{source: models.SourceTwitter, err: errors.New("rate limited")}
	reddit := &fakeConnector{source: models.SourceReddit, posts: rawPosts(models.SourceReddit, 2)}

	counts := is.Run(context.Background(), []SourceConnector{twitter, reddit})

	require.EqualValues(t, 0, counts[models.SourceTwitter])
	require.EqualValues(t, 2, counts[models.SourceReddit])
}

func TestNewFeedItemDefaultsTimestamp(t *testing.T) {
	now := time.Now()
	item := models.NewFeedItem(models.RawPost{
		SourceID: "x1",
		Source:   models.SourceTwitter,
		Content:  "no timestamp",
	}, now)
	require.Equal(t, now, item.Timestamp)
	require.Equal(t, now, item.CreatedAt)
}
