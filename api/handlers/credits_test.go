package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"creatorhub/models"

	"github.com/stretchr/testify/require"
)

func TestGetCreditsEmptyHistory(t *testing.T) {
	router := setupTestRouter(t)
	user := createUser(t)

	w, body := doRequest(t, router, http.MethodGet, "/api/v1/credits", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), body["total"])
	require.Empty(t, body["history"])
}

func TestGetCreditsUserNotFound(t *testing.T) {
	router := setupTestRouter(t)
	ghost := &models.User{ID: 424242, Role: models.RoleUser}

	w, _ := doRequest(t, router, http.MethodGet, "/api/v1/credits", ghost, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAwardCreditsByAction(t *testing.T) {
	router := setupTestRouter(t)
	user := createUser(t)
	item := createFeedItem(t, "tw-award")

	w, body := doRequest(t, router, http.MethodPost, "/api/v1/credits/award", user,
		map[string]interface{}{"action": "share", "feed_id": item.ID})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(3), body["credits_awarded"])
	require.Equal(t, float64(3), body["new_total"])

	// Повтор по тому же ключу - no-op
	w, body = doRequest(t, router, http.MethodPost, "/api/v1/credits/award", user,
		map[string]interface{}{"action": "share", "feed_id": item.ID})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), body["credits_awarded"])
	require.Equal(t, float64(3), body["new_total"])
}

func TestAwardCreditsInvalidAction(t *testing.T) {
	router := setupTestRouter(t)
	user := createUser(t)
	item := createFeedItem(t, "tw-badaction")

	w, _ := doRequest(t, router, http.MethodPost, "/api/v1/credits/award", user,
		map[string]interface{}{"action": "like", "feed_id": item.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAwardCreditsMissingFields(t *testing.T) {
	router := setupTestRouter(t)
	user := createUser(t)

	w, _ := doRequest(t, router, http.MethodPost, "/api/v1/credits/award", user,
		map[string]interface{}{"action": "save"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddCreditsAsAdmin(t *testing.T) {
	router := setupTestRouter(t)
	admin := createUser(t)
	admin.Role = models.RoleAdmin
	target := createUser(t)

	w, body := doRequest(t, router, http.MethodPost, "/api/v1/credits/add", admin,
		map[string]interface{}{"user_id": target.ID, "amount": 50, "reason": "Contest winner"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(50), body["credits"])

	// Формулировка сохраняется дословно в истории
	w, body = doRequest(t, router, http.MethodGet, "/api/v1/credits", target, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := body["history"].([]interface{})
	require.Len(t, history, 1)
	entry := history[0].(map[string]interface{})
	require.Equal(t, "Contest winner", entry["reason"])
}

func TestAddCreditsForbiddenForUser(t *testing.T) {
	router := setupTestRouter(t)
	user := createUser(t)

	w, _ := doRequest(t, router, http.MethodPost, "/api/v1/credits/add", user,
		map[string]interface{}{"user_id": user.ID, "amount": 50, "reason": "self-grant"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAddCreditsUnknownUser(t *testing.T) {
	router := setupTestRouter(t)
	admin := createUser(t)
	admin.Role = models.RoleAdmin

	w, _ := doRequest(t, router, http.MethodPost, "/api/v1/credits/add", admin,
		map[string]interface{}{"user_id": 999999, "amount": 10, "reason": "ghost"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaveThenAwardSharesIdempotencyKey(t *testing.T) {
	router := setupTestRouter(t)
	user := createUser(t)
	item := createFeedItem(t, "tw-save-award")

	w, _ := doRequest(t, router, http.MethodPost, fmt.Sprintf("/api/v1/feeds/%d/save", item.ID), user, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Повторное начисление за то же сохранение не проходит
	w, body := doRequest(t, router, http.MethodPost, "/api/v1/credits/award", user,
		map[string]interface{}{"action": "save", "feed_id": item.ID})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), body["credits_awarded"])
	require.Equal(t, float64(2), body["new_total"])
}
