package services

import (
	"context"
	"fmt"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementService - единственная точка мутации savedBy/reportedBy.
// Изменение состояния и начисление кредитов за него выполняются одной
// транзакцией: повторный запрос клиента не может ни задвоить состояние
// (уникальные индексы), ни задвоить начисление (идемпотентный ключ
// журнала).
type EngagementService struct{}

func NewEngagementService() *EngagementService {
	return &EngagementService{}
}

// Save сохраняет элемент ленты для пользователя и начисляет +2 кредита.
// Возвращает ErrFeedNotFound или ErrAlreadySaved.
func (es *EngagementService) Save(ctx context.Context, userID, feedID int64) (*models.AwardResult, error) {
	result := &models.AwardResult{}
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := feedExistsTx(tx, feedID); err != nil {
			return err
		}

		save := &models.FeedSave{
			UserID:    userID,
			FeedID:    feedID,
			CreatedAt: time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "feed_id"}},
			DoNothing: true,
		}).Create(save)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySaved
		}

		entry := &models.CreditEntry{
			UserID:    userID,
			FeedID:    &feedID,
			Action:    models.ActionSave,
			Amount:    rewardTable[models.ActionSave],
			Reason:    fmt.Sprintf("Saved content (ID: %d)", feedID),
			CreatedAt: time.Now(),
		}
		applied, err := appendEntryTx(tx, entry)
		if err != nil {
			return err
		}
		if applied {
			result.CreditsAwarded = entry.Amount
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
		creditsAwardedTotal.WithLabelValues(string(models.ActionSave)).Add(float64(result.CreditsAwarded))
		PublishCreditEvent(ctx, userID, models.ActionSave, result.CreditsAwarded)
	}
	return result, nil
}

// Unsave убирает сохранение. Идемпотентно: удаление отсутствующей записи -
// no-op, а не ошибка. Строка feed_saves представляет обе стороны связи,
// поэтому симметрия savedBy/savedFeeds не может нарушиться.
func (es *EngagementService) Unsave(ctx context.Context, userID, feedID int64) error {
	return db.GetWriteDB(ctx).
		Where("user_id = ? AND feed_id = ?", userID, feedID).
		Delete(&models.FeedSave{}).Error
}

// Report добавляет жалобу (не более одной на пользователя) и начисляет
// +1 кредит. Возвращает ErrReasonRequired, ErrFeedNotFound или
// ErrAlreadyReported.
func (es *EngagementService) Report(ctx context.Context, userID, feedID int64, reason string) (*models.AwardResult, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}

	result := &models.AwardResult{}
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := feedExistsTx(tx, feedID); err != nil {
			return err
		}

		report := &models.FeedReport{
			FeedID:    feedID,
			UserID:    userID,
			Reason:    reason,
			CreatedAt: time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feed_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(report)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReported
		}

		entry := &models.CreditEntry{
			UserID:    userID,
			FeedID:    &feedID,
			Action:    models.ActionReport,
			Amount:    rewardTable[models.ActionReport],
			Reason:    fmt.Sprintf("Reported inappropriate content (ID: %d)", feedID),
			CreatedAt: time.Now(),
		}
		applied, err := appendEntryTx(tx, entry)
		if err != nil {
			return err
		}
		if applied {
			result.CreditsAwarded = entry.Amount
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
		creditsAwardedTotal.WithLabelValues(string(models.ActionReport)).Add(float64(result.CreditsAwarded))
		PublishCreditEvent(ctx, userID, models.ActionReport, result.CreditsAwarded)
	}
	return result, nil
}

func feedExistsTx(tx *gorm.DB, feedID int64) error {
	var count int64
	if err := tx.Model(&models.FeedItem{}).Where("id = ?", feedID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrFeedNotFound
	}
	return nil
}
