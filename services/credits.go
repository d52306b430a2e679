package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Таблица вознаграждений за взаимодействия
var rewardTable = map[models.CreditAction]int64{
	models.ActionSave:   2,
	models.ActionShare:  3,
	models.ActionReport: 1,
}

const profileBonusAmount = 20

// CreditService - журнал кредитов. Запись в журнал и инкремент баланса
// всегда выполняются в одной транзакции, поэтому credits_total равен
// сумме записей журнала в любой момент. Журнал только дополняется.
type CreditService struct{}

func NewCreditService() *CreditService {
	return &CreditService{}
}

// Award начисляет кредиты за взаимодействие с элементом ленты.
// Идемпотентно по ключу (user, feed, action): повторный вызов (ретрай
// клиента, задвоенный запрос) возвращает amount 0 и текущий баланс.
func (cs *CreditService) Award(ctx context.Context, userID int64, action models.CreditAction, feedID int64) (*models.AwardResult, error) {
	amount, ok := rewardTable[action]
	if !ok {
		return nil, ErrInvalidAction
	}

	var reason string
	switch action {
	case models.ActionSave:
		reason = fmt.Sprintf("Saved content (ID: %d)", feedID)
	case models.ActionShare:
		reason = fmt.Sprintf("Shared content (ID: %d)", feedID)
	case models.ActionReport:
		reason = fmt.Sprintf("Reported inappropriate content (ID: %d)", feedID)
	}

	result := &models.AwardResult{}
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &models.CreditEntry{
			UserID:    userID,
			FeedID:    &feedID,
			Action:    action,
			Amount:    amount,
			Reason:    reason,
			CreatedAt: time.Now(),
		}
		applied, err := appendEntryTx(tx, entry)
		if err != nil {
			return err
		}
		if applied {
			result.CreditsAwarded = amount
		}
		total, err := currentTotalTx(tx, userID)
		if err != nil {
			return err
		}
		result.NewTotal = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.CreditsAwarded > 0 {
		creditsAwardedTotal.WithLabelValues(string(action)).Add(float64(result.CreditsAwarded))
		PublishCreditEvent(ctx, userID, action, result.CreditsAwarded)
	}
	return result, nil
}

// AdminGrant начисляет произвольную сумму с формулировкой вызывающего.
// Сумма может быть отрицательной; проверка прав - на уровне маршрута.
func (cs *CreditService) AdminGrant(ctx context.Context, targetUserID, amount int64, reason string) (int64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	if reason == "" {
		return 0, ErrReasonRequired
	}

	var newTotal int64
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &models.CreditEntry{
			UserID:    targetUserID,
			Action:    models.ActionGrant,
			Amount:    amount,
			Reason:    reason,
			CreatedAt: time.Now(),
		}
		if _, err := appendEntryTx(tx, entry); err != nil {
			return err
		}
		total, err := currentTotalTx(tx, targetUserID)
		if err != nil {
			return err
		}
		newTotal = total
		return nil
	})
	if err != nil {
		return 0, err
	}
	creditsAwardedTotal.WithLabelValues(string(models.ActionGrant)).Add(float64(amount))
	PublishCreditEvent(ctx, targetUserID, models.ActionGrant, amount)
	return newTotal, nil
}

// ProfileCompletionBonus - разовое начисление при завершении профиля.
// Переключение флага profile_completed false->true выполняется условным
// UPDATE внутри той же транзакции, что и запись журнала, поэтому бонус
// не может быть выплачен дважды даже при конкурентных вызовах; флаг
// назад не сбрасывается.
func (cs *CreditService) ProfileCompletionBonus(ctx context.Context, userID int64) (int64, error) {
	var newTotal int64
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND profile_completed = ?", userID, false).
			Update("profile_completed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrUserNotFound
			}
			return ErrBonusAlreadyPaid
		}

		entry := &models.CreditEntry{
			UserID:    userID,
			Action:    models.ActionBonus,
			Amount:    profileBonusAmount,
			Reason:    "Profile completion bonus",
			CreatedAt: time.Now(),
		}
		if _, err := appendEntryTx(tx, entry); err != nil {
			return err
		}
		total, err := currentTotalTx(tx, userID)
		if err != nil {
			return err
		}
		newTotal = total
		return nil
	})
	if err != nil {
		return 0, err
	}
	creditsAwardedTotal.WithLabelValues(string(models.ActionBonus)).Add(profileBonusAmount)
	return newTotal, nil
}

// Balance возвращает текущий баланс с историей начислений
func (cs *CreditService) Balance(ctx context.Context, userID int64) (*models.CreditBalance, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	history := make([]models.CreditEntry, 0)
	err = db.GetReadOnlyDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return &models.CreditBalance{Total: user.CreditsTotal, History: history}, nil
}

// appendEntryTx дописывает запись журнала и в той же транзакции двигает
// баланс. Для взаимодействий вставка условна по идемпотентному ключу:
// конфликт означает, что начисление уже было - баланс не трогаем.
func appendEntryTx(tx *gorm.DB, entry *models.CreditEntry) (bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "feed_id"}, {Name: "action"}},
		DoNothing: true,
	}).Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	upd := tx.Model(&models.User{}).
		Where("id = ?", entry.UserID).
		Update("credits_total", gorm.Expr("credits_total + ?", entry.Amount))
	if upd.Error != nil {
		return false, upd.Error
	}
	if upd.RowsAffected == 0 {
		return false, ErrUserNotFound
	}
	return true, nil
}

func currentTotalTx(tx *gorm.DB, userID int64) (int64, error) {
	var user models.User
	err := tx.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}
	return user.CreditsTotal, nil
}
