package models

import "time"

// CreditAction - действия, за которые начисляются кредиты
type CreditAction string

const (
	ActionSave   CreditAction = "save"
	ActionShare  CreditAction = "share"
	ActionReport CreditAction = "report"
	ActionGrant  CreditAction = "grant"
	ActionBonus  CreditAction = "profile_bonus"
)

// CreditEntry - запись журнала кредитов. Журнал только дополняется,
// существующие записи никогда не изменяются и не удаляются; баланс
// пользователя равен сумме записей в любой момент времени.
//
// Уникальный индекс (user_id, feed_id, action) делает начисления за
// взаимодействие идемпотентными: повторный вызов с тем же ключом - no-op.
// У админских начислений и бонуса feed_id = NULL, поэтому индекс их
// не ограничивает.
type CreditEntry struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64        `gorm:"index;uniqueIndex:idx_credit_idem" json:"user_id"`
	FeedID    *int64       `gorm:"uniqueIndex:idx_credit_idem" json:"feed_id,omitempty"`
	Action    CreditAction `gorm:"size:20;uniqueIndex:idx_credit_idem" json:"action"`
	Amount    int64        `json:"amount"`
	Reason    string       `gorm:"size:512" json:"reason"`
	CreatedAt time.Time    `json:"created_at"`
}

func (CreditEntry) TableName() string {
	return "credit_entries"
}

// CreditBalance - ответ API: текущий баланс с историей
type CreditBalance struct {
	Total   int64         `json:"total"`
	History []CreditEntry `json:"history"`
}

// AwardResult - результат начисления за взаимодействие
type AwardResult struct {
	CreditsAwarded int64 `json:"credits_awarded"`
	NewTotal       int64 `json:"new_total"`
}
