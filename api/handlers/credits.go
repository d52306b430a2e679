package handlers

import (
	"errors"
	"net/http"

	"creatorhub/models"
	"creatorhub/services"

	"github.com/gin-gonic/gin"
)

var creditService = services.NewCreditService()

// GetCredits возвращает баланс и историю начислений текущего пользователя
func GetCredits(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	balance, err := creditService.Balance(c.Request.Context(), userID.(int64))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get credits"})
		return
	}
	c.JSON(http.StatusOK, balance)
}

// AwardCredits начисляет кредиты за взаимодействие. Повторное начисление
// по тому же ключу (user, feed, action) - no-op с amount 0.
func AwardCredits(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
		FeedID int64  `json:"feed_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := creditService.Award(c.Request.Context(), userID.(int64), models.CreditAction(req.Action), req.FeedID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
			return
		}
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to award credits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credits_awarded": result.CreditsAwarded,
		"new_total":       result.NewTotal,
	})
}

// AddCredits - админское начисление произвольной суммы с формулировкой,
// взятой у вызывающего дословно
func AddCredits(c *gin.Context) {
	var req struct {
		UserID int64  `json:"user_id" binding:"required"`
		Amount int64  `json:"amount" binding:"required"`
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id, amount, and reason are required"})
		return
	}

	newTotal, err := creditService.AdminGrant(c.Request.Context(), req.UserID, req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add credits"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": req.UserID,
		"credits": newTotal,
		"message": "Credits added successfully",
	})
}
