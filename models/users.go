package models

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string    `gorm:"size:30;uniqueIndex" json:"username"`
	Email            string    `gorm:"size:255;uniqueIndex" json:"email"`
	Password         string    `gorm:"size:255" json:"-"`
	Role             Role      `gorm:"size:20;default:user" json:"role"`
	ProfileCompleted bool      `json:"profile_completed"`
	Bio              string    `gorm:"type:text" json:"bio"`
	AvatarURL        string    `gorm:"size:512" json:"avatar_url"`
	CreditsTotal     int64     `json:"credits_total"`
	LastLogin        time.Time `json:"last_login"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// NewUser - явная фабрика: хеширование пароля выполняется здесь,
// до любого обращения к хранилищу, а не в хуках ORM
func NewUser(username, email, password string) (*User, error) {
	if len(username) < 3 {
		return nil, errors.New("username must be at least 3 characters")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &User{
		Username:  username,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hash,
		Role:      RoleUser,
		LastLogin: now,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HashPassword хеширует пароль через argon2id, соль хранится вместе с хешем
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// CheckPassword сверяет пароль с сохраненным хешем
func (u *User) CheckPassword(password string) bool {
	parts := strings.Split(u.Password, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(hash) == parts[1]
}

type UserToken struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"index:user_token_idx,unique" json:"user_id"`
	Token  string `gorm:"size:255;index:user_token_idx,unique" json:"token"`
}

func (UserToken) TableName() string {
	return "user_tokens"
}
