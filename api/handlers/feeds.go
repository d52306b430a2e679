package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"creatorhub/services"

	"github.com/gin-gonic/gin"
)

var (
	feedService        *services.FeedService
	refreshCoordinator *services.RefreshCoordinator
	engagementService  = services.NewEngagementService()
)

// InitFeedHandlers связывает обработчики с сервисами, собранными при старте
func InitFeedHandlers(fs *services.FeedService, rc *services.RefreshCoordinator) {
	feedService = fs
	refreshCoordinator = rc
}

// ListFeeds отдает страницу ленты. На первой странице координатор может
// запустить обновление из внешних источников; его сбой никогда не мешает
// отдать текущее содержимое хранилища.
func ListFeeds(c *gin.Context) {
	page := 1
	if parsed, err := strconv.Atoi(c.Query("page")); err == nil && parsed > 0 {
		page = parsed
	}
	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 {
		limit = parsed
	}

	if page == 1 && refreshCoordinator != nil {
		refreshCoordinator.EnsureFresh(c.Request.Context())
	}

	feedPage, err := feedService.List(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get feeds"})
		return
	}
	c.JSON(http.StatusOK, feedPage)
}

// SaveFeed сохраняет элемент для текущего пользователя
func SaveFeed(c *gin.Context) {
	userID, feedID, ok := userAndFeedID(c)
	if !ok {
		return
	}

	result, err := engagementService.Save(c.Request.Context(), userID, feedID)
	if err != nil {
		respondEngagementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Feed saved successfully",
		"credits_awarded": result.CreditsAwarded,
		"new_total":       result.NewTotal,
	})
}

// UnsaveFeed убирает сохранение (идемпотентно)
func UnsaveFeed(c *gin.Context) {
	userID, feedID, ok := userAndFeedID(c)
	if !ok {
		return
	}

	if err := engagementService.Unsave(c.Request.Context(), userID, feedID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave feed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feed removed from saved"})
}

// ReportFeed добавляет жалобу на элемент
func ReportFeed(c *gin.Context) {
	userID, feedID, ok := userAndFeedID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := engagementService.Report(c.Request.Context(), userID, feedID, req.Reason)
	if err != nil {
		respondEngagementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "Feed reported successfully",
		"credits_awarded": result.CreditsAwarded,
		"new_total":       result.NewTotal,
	})
}

// ReportedFeeds возвращает элементы с жалобами (только для админов,
// проверка роли - в middleware)
func ReportedFeeds(c *gin.Context) {
	reported, err := feedService.ListReported(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reported feeds"})
		return
	}
	c.JSON(http.StatusOK, reported)
}

func userAndFeedID(c *gin.Context) (int64, int64, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, 0, false
	}
	feedID, err := strconv.ParseInt(c.Param("feed_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed ID"})
		return 0, 0, false
	}
	return userID.(int64), feedID, true
}

func respondEngagementError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFeedNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
	case errors.Is(err, services.ErrAlreadySaved):
		c.JSON(http.StatusConflict, gin.H{"error": "Feed already saved"})
	case errors.Is(err, services.ErrAlreadyReported):
		c.JSON(http.StatusConflict, gin.H{"error": "Already reported by you"})
	case errors.Is(err, services.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reason for report is required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
