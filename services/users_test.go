package services

import (
	"context"
	"testing"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	"github.com/stretchr/testify/require"
)

func TestLoginTouchesLastLogin(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)

	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.ORM.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login", old).Error)

	us := NewUserService()
	token, logged, err := us.Login(context.Background(), user.Email, "testpassword")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, logged.ID)

	var reloaded models.User
	require.NoError(t, db.ORM.First(&reloaded, user.ID).Error)
	require.True(t, reloaded.LastLogin.After(old))
}

func TestLoginRevokesPreviousTokens(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	us := NewUserService()

	first, _, err := us.Login(context.Background(), user.Email, "testpassword")
	require.NoError(t, err)
	second, _, err := us.Login(context.Background(), user.Email, "testpassword")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = us.FindByToken(context.Background(), first)
	require.ErrorIs(t, err, ErrUserNotFound)

	resolved, err := us.FindByToken(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	us := NewUserService()

	_, _, err := us.Login(context.Background(), user.Email, "not-the-password")
	require.Error(t, err)
	require.Equal(t, "invalid credentials", err.Error())
}
