package services

import "errors"

// Ошибки уровня сервисов; обработчики транслируют их в HTTP статусы
var (
	ErrFeedNotFound     = errors.New("feed not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadySaved     = errors.New("feed already saved")
	ErrAlreadyReported  = errors.New("already reported by you")
	ErrReasonRequired   = errors.New("reason for report is required")
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidAmount    = errors.New("amount must be non-zero")
	ErrBonusAlreadyPaid = errors.New("profile completion bonus already paid")
)
