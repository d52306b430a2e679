package handlers

import (
	"errors"
	"net/http"

	"creatorhub/services"

	"github.com/gin-gonic/gin"
)

// SavedFeeds возвращает сохраненные элементы текущего пользователя
func SavedFeeds(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	items, err := feedService.SavedByUser(c.Request.Context(), userID.(int64))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get saved feeds"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ProfileCompleted вызывается внешним сервисом профилей, когда профиль
// пользователя стал полным. Бонус разовый: повторный вызов - конфликт.
func ProfileCompleted(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	newTotal, err := creditService.ProfileCompletionBonus(c.Request.Context(), userID.(int64))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrBonusAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": "Profile completion bonus already paid"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to apply bonus"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Profile completion bonus applied",
		"new_total": newTotal,
	})
}
