package models

import "time"

// FeedSource - закрытый набор внешних источников контента
type FeedSource string

const (
	SourceTwitter FeedSource = "twitter"
	SourceReddit  FeedSource = "reddit"
)

// RawPost - нормализованный пост из внешнего источника (не сохраняется напрямую)
type RawPost struct {
	SourceID         string
	Source           FeedSource
	Content          string
	AuthorID         string
	AuthorName       string
	AuthorProfileURL string
	MediaURL         string
	URL              string
	Likes            int
	Shares           int
	Comments         int
	Timestamp        time.Time
}

// FeedItem - сохраненный элемент ленты.
// Пара (source_id, source) - единственный естественный ключ: уникальный
// индекс в БД является механизмом защиты от дублей при конкурентном инжесте.
type FeedItem struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SourceID         string     `gorm:"size:255;uniqueIndex:idx_feed_natural_key" json:"source_id"`
	Source           FeedSource `gorm:"size:20;uniqueIndex:idx_feed_natural_key" json:"source"`
	Content          string     `gorm:"type:text" json:"content"`
	AuthorID         string     `gorm:"size:255" json:"author_id"`
	AuthorName       string     `gorm:"size:255" json:"author_name"`
	AuthorProfileURL string     `gorm:"size:512" json:"author_profile_url,omitempty"`
	MediaURL         string     `gorm:"size:512" json:"media_url,omitempty"`
	URL              string     `gorm:"size:512" json:"url"`
	Likes            int        `json:"likes"`
	Shares           int        `json:"shares"`
	Comments         int        `json:"comments"`
	Timestamp        time.Time  `gorm:"index" json:"timestamp"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
}

func (FeedItem) TableName() string {
	return "feed_items"
}

// NewFeedItem - явная фабрика вместо хуков хранилища: нормализация полей
// происходит до любого обращения к БД
func NewFeedItem(raw RawPost, now time.Time) *FeedItem {
	if raw.Timestamp.IsZero() {
		raw.Timestamp = now
	}
	return &FeedItem{
		SourceID:         raw.SourceID,
		Source:           raw.Source,
		Content:          raw.Content,
		AuthorID:         raw.AuthorID,
		AuthorName:       raw.AuthorName,
		AuthorProfileURL: raw.AuthorProfileURL,
		MediaURL:         raw.MediaURL,
		URL:              raw.URL,
		Likes:            raw.Likes,
		Shares:           raw.Shares,
		Comments:         raw.Comments,
		Timestamp:        raw.Timestamp,
		CreatedAt:        now,
	}
}

// FeedSave - сохранение элемента пользователем. Одна строка представляет
// одновременно членство в savedBy и в savedFeeds, поэтому двусторонняя
// согласованность обеспечивается схемой.
type FeedSave struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:idx_feed_save_user" json:"user_id"`
	FeedID    int64     `gorm:"uniqueIndex:idx_feed_save_user;index" json:"feed_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (FeedSave) TableName() string {
	return "feed_saves"
}

// FeedReport - жалоба на элемент ленты, не более одной на пользователя
type FeedReport struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FeedID    int64     `gorm:"uniqueIndex:idx_feed_report_user;index" json:"feed_id"`
	UserID    int64     `gorm:"uniqueIndex:idx_feed_report_user" json:"user_id"`
	Reason    string    `gorm:"size:512" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (FeedReport) TableName() string {
	return "feed_reports"
}

// FeedPage - ответ API для постраничной выдачи ленты
type FeedPage struct {
	Feeds       []FeedItem `json:"feeds"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	TotalFeeds  int64      `json:"total_feeds"`
}

// ReportedFeed - элемент ленты с раскрытыми жалобами (админская выдача)
type ReportedFeed struct {
	FeedItem
	Reports []ReportDetail `json:"reports"`
}

// ReportDetail - жалоба с раскрытым автором
type ReportDetail struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Reason     string    `json:"reason"`
	ReportedAt time.Time `json:"reported_at"`
}
