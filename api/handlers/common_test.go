package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"creatorhub/api/middleware"
	"creatorhub/config"
	"creatorhub/db"
	"creatorhub/models"
	"creatorhub/services"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// setupTestRouter собирает роутер с тестовой аутентификацией по заголовкам
// (X-User-ID / X-User-Role) и той же раскладкой маршрутов, что боевой
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if db.ORM == nil {
		require.NoError(t, db.ConnectTestDB())
	}
	for _, table := range []string{"credit_entries", "feed_reports", "feed_saves", "feed_items", "user_tokens", "users"} {
		require.NoError(t, db.ORM.Exec("DELETE FROM "+table).Error)
	}

	InitFeedHandlers(services.NewFeedService(config.FeedConfig{
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}), nil)

	router := gin.New()

	public := router.Group("/api/v1/")
	{
		public.POST("auth/register", Register)
		public.POST("auth/login", Login)
	}

	authorized := router.Group("/api/v1/")
	authorized.Use(middleware.TestAuthMiddleware())
	{
		authorized.POST("auth/logout", Logout)

		authorized.GET("feeds", ListFeeds)
		authorized.POST("feeds/:feed_id/save", SaveFeed)
		authorized.POST("feeds/:feed_id/unsave", UnsaveFeed)
		authorized.POST("feeds/:feed_id/report", ReportFeed)

		authorized.GET("credits", GetCredits)
		authorized.POST("credits/award", AwardCredits)

		authorized.GET("users/saved", SavedFeeds)
		authorized.POST("users/profile/completed", ProfileCompleted)
	}

	admin := router.Group("/api/v1/")
	admin.Use(middleware.TestAuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("feeds/reported", ReportedFeeds)
		admin.POST("credits/add", AddCredits)
	}

	return router
}

func createUser(t *testing.T) *models.User {
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

func createFeedItem(t *testing.T, sourceID string) *models.FeedItem {
	t.Helper()
	item := models.NewFeedItem(models.RawPost{
		SourceID:   sourceID,
		Source:     models.SourceTwitter,
		Content:    gofakeit.Sentence(8),
		AuthorID:   gofakeit.Username(),
		AuthorName: gofakeit.Name(),
		URL:        gofakeit.URL(),
		Timestamp:  time.Now().Add(-time.Hour),
	}, time.Now())
	require.NoError(t, db.ORM.Create(item).Error)
	return item
}

// doRequest выполняет запрос от имени пользователя и декодирует JSON ответа
func doRequest(t *testing.T, router *gin.Engine, method, path string, user *models.User, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", user.ID))
		req.Header.Set("X-User-Role", string(user.Role))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w, parsed
}
