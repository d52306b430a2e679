package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"creatorhub/config"
	"creatorhub/db"
	"creatorhub/models"

	"gorm.io/gorm"
)

const (
	FEED_CACHE_TTL     = time.Hour        // TTL для кеша страниц ленты
	FEED_PAGE_KEY      = "feed_pages"     // Префикс ключей страниц
	FEED_CACHE_VER_KEY = "feed:pages:ver" // Версия кеша, инкремент = инвалидация
)

// FeedService - канонический доступ к сохраненной ленте: постраничная
// выдача, поиск по id и админская выборка жалоб. Мутации savedBy/reportedBy
// выполняет только EngagementService.
type FeedService struct {
	defaultPageSize int
	maxPageSize     int
}

func NewFeedService(conf config.FeedConfig) *FeedService {
	return &FeedService{
		defaultPageSize: conf.DefaultPageSize,
		maxPageSize:     conf.MaxPageSize,
	}
}

// List возвращает страницу ленты, упорядоченную по времени публикации.
// Вторичный ключ сортировки - id (порядок вставки), чтобы пагинация была
// детерминированной при совпадающих timestamp. Страница за пределами
// диапазона - пустой список с корректными totalPages/totalFeeds.
func (fs *FeedService) List(ctx context.Context, page, pageSize int) (*models.FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = fs.defaultPageSize
	}
	if pageSize > fs.maxPageSize {
		pageSize = fs.maxPageSize
	}

	if cached := fs.pageFromCache(ctx, page, pageSize); cached != nil {
		return cached, nil
	}

	var total int64
	if err := db.GetReadOnlyDB(ctx).Model(&models.FeedItem{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count feed items: %w", err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	items := make([]models.FeedItem, 0, pageSize)
	err := db.GetReadOnlyDB(ctx).
		Order("timestamp DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feed items: %w", err)
	}

	result := &models.FeedPage{
		Feeds:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalFeeds:  total,
	}
	fs.cachePage(ctx, page, pageSize, result)
	return result, nil
}

// FindByID возвращает элемент ленты или ErrFeedNotFound
func (fs *FeedService) FindByID(ctx context.Context, feedID int64) (*models.FeedItem, error) {
	var item models.FeedItem
	err := db.GetReadOnlyDB(ctx).First(&item, feedID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListReported возвращает элементы хотя бы с одной жалобой, с раскрытыми
// авторами жалоб (админская выдача)
func (fs *FeedService) ListReported(ctx context.Context) ([]models.ReportedFeed, error) {
	var rows []struct {
		FeedID    int64
		UserID    int64
		Username  string
		Email     string
		Reason    string
		CreatedAt time.Time
	}
	err := db.GetReadOnlyDB(ctx).
		Table("feed_reports r").
		Select("r.feed_id, r.user_id, u.username, u.email, r.reason, r.created_at").
		Joins("JOIN users u ON u.id = r.user_id").
		Order("r.created_at ASC, r.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	if len(rows) == 0 {
		return []models.ReportedFeed{}, nil
	}

	reportsByFeed := make(map[int64][]models.ReportDetail)
	feedIDs := make([]int64, 0, len(rows))
	for _, r := range rows {
		if _, seen := reportsByFeed[r.FeedID]; !seen {
			feedIDs = append(feedIDs, r.FeedID)
		}
		reportsByFeed[r.FeedID] = append(reportsByFeed[r.FeedID], models.ReportDetail{
			UserID:     r.UserID,
			Username:   r.Username,
			Email:      r.Email,
			Reason:     r.Reason,
			ReportedAt: r.CreatedAt,
		})
	}

	var items []models.FeedItem
	if err := db.GetReadOnlyDB(ctx).Where("id IN ?", feedIDs).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load reported feed items: %w", err)
	}

	byID := make(map[int64]models.FeedItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	reported := make([]models.ReportedFeed, 0, len(feedIDs))
	for _, id := range feedIDs {
		item, ok := byID[id]
		if !ok {
			continue
		}
		reported = append(reported, models.ReportedFeed{
			FeedItem: item,
			Reports:  reportsByFeed[id],
		})
	}
	return reported, nil
}

// SavedByUser возвращает элементы, сохраненные пользователем, в порядке
// сохранения (новые первыми)
func (fs *FeedService) SavedByUser(ctx context.Context, userID int64) ([]models.FeedItem, error) {
	items := make([]models.FeedItem, 0)
	err := db.GetReadOnlyDB(ctx).
		Table("feed_items").
		Joins("JOIN feed_saves s ON s.feed_id = feed_items.id").
		Where("s.user_id = ?", userID).
		Order("s.created_at DESC, s.id DESC").
		Select("feed_items.*").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load saved feeds: %w", err)
	}
	return items, nil
}

// pageFromCache читает страницу из Redis; любой сбой кеша - просто промах
func (fs *FeedService) pageFromCache(ctx context.Context, page, pageSize int) *models.FeedPage {
	if RedisClient == nil {
		return nil
	}
	raw, err := RedisClient.Get(ctx, fs.pageKey(ctx, page, pageSize)).Result()
	if err != nil {
		return nil
	}
	var cached models.FeedPage
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	return &cached
}

func (fs *FeedService) cachePage(ctx context.Context, page, pageSize int, result *models.FeedPage) {
	if RedisClient == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := RedisClient.Set(ctx, fs.pageKey(ctx, page, pageSize), data, FEED_CACHE_TTL).Err(); err != nil {
		log.Printf("WARN: failed to cache feed page: %v", err)
	}
}

// pageKey включает версию кеша: инкремент версии делает все старые
// страницы недостижимыми без SCAN по ключам
func (fs *FeedService) pageKey(ctx context.Context, page, pageSize int) string {
	ver, err := RedisClient.Get(ctx, FEED_CACHE_VER_KEY).Int64()
	if err != nil {
		ver = 0
	}
	return fmt.Sprintf("%s:v%d:%d:%d", FEED_PAGE_KEY, ver, page, pageSize)
}

// InvalidateFeedCache сбрасывает кеш страниц после инжеста или мутации
func InvalidateFeedCache(ctx context.Context) {
	if RedisClient == nil {
		return
	}
	if err := RedisClient.Incr(ctx, FEED_CACHE_VER_KEY).Err(); err != nil {
		log.Printf("WARN: failed to invalidate feed cache: %v", err)
	}
}
