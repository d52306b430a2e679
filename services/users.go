package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"creatorhub/db"
	"creatorhub/models"

	"gorm.io/gorm"
)

// UserService - тонкая обертка регистрации и сессий. Ядро системы
// опирается только на FindByToken (принципал запроса) и IsAdmin.
type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

// Register создает пользователя через явную фабрику models.NewUser
func (us *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	user, err := models.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	var exists int64
	err = db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&exists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists > 0 {
		return nil, errors.New("user already exists")
	}

	if err := db.GetWriteDB(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login проверяет пароль и выдает новый токен, отзывая старые
func (us *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, errors.New("invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}
	if !user.CheckPassword(password) {
		return "", nil, errors.New("invalid credentials")
	}

	if err := us.Logout(ctx, user.ID); err != nil {
		return "", nil, err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", nil, err
	}
	token := hex.EncodeToString(tokenBytes)

	err = db.GetWriteDB(ctx).Create(&models.UserToken{
		UserID: user.ID,
		Token:  token,
	}).Error
	if err != nil {
		return "", nil, err
	}

	err = db.GetWriteDB(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("last_login", gorm.Expr("CURRENT_TIMESTAMP")).Error
	if err != nil {
		// Метка времени не критична для сессии, токен уже выдан
		log.Printf("WARN: failed to update last_login for user %d: %v", user.ID, err)
	}

	return token, &user, nil
}

// Logout отзывает все токены пользователя
func (us *UserService) Logout(ctx context.Context, userID int64) error {
	return db.GetWriteDB(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserToken{}).Error
}

// FindByToken возвращает пользователя по токену сессии
func (us *UserService) FindByToken(ctx context.Context, token string) (*models.User, error) {
	var userToken models.UserToken
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = db.GetReadOnlyDB(ctx).First(&user, userToken.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID возвращает пользователя или ErrUserNotFound
func (us *UserService) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
