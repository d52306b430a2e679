package services

import (
	"context"
	"log"
	"sync"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	"gorm.io/gorm/clause"
)

// IngestService сохраняет новые посты из внешних источников.
// Дедупликация держится на уникальном индексе (source_id, source):
// вставка при конфликте - успешный no-op, а не ошибка, поэтому
// конкурентные проходы инжеста безопасны без внешних блокировок.
type IngestService struct {
	connectorTimeout time.Duration
	now              func() time.Time
}

func NewIngestService(connectorTimeout time.Duration) *IngestService {
	return &IngestService{
		connectorTimeout: connectorTimeout,
		now:              time.Now,
	}
}

// Run опрашивает все коннекторы параллельно и сохраняет ранее не виденные
// посты. Возвращает количество новых элементов по источникам. Отказ
// коннектора деградирует до нуля результатов и никогда не валит проход.
func (is *IngestService) Run(ctx context.Context, connectors []SourceConnector) map[models.FeedSource]int64 {
	var wg sync.WaitGroup
	results := make([][]models.RawPost, len(connectors))

	for i, conn := range connectors {
		wg.Add(1)
		go func(i int, conn SourceConnector) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, is.connectorTimeout)
			defer cancel()

			posts, err := conn.Fetch(fetchCtx)
			if err != nil {
				// Деградация до пустого результата: медленный или упавший
				// источник не должен мешать остальным
				log.Printf("WARN: connector %s degraded to empty: %v", conn.Source(), err)
				connectorErrorsTotal.WithLabelValues(string(conn.Source())).Inc()
				return
			}
			results[i] = posts
		}(i, conn)
	}
	wg.Wait()

	counts := make(map[models.FeedSource]int64, len(connectors))
	for _, conn := range connectors {
		counts[conn.Source()] = 0
	}
	for _, posts := range results {
		for _, raw := range posts {
			inserted, err := is.persist(ctx, raw)
			if err != nil {
				log.Printf("ERROR: failed to persist %s/%s: %v", raw.Source, raw.SourceID, err)
				continue
			}
			counts[raw.Source] += inserted
		}
	}

	for source, n := range counts {
		if n > 0 {
			feedIngestedTotal.WithLabelValues(string(source)).Add(float64(n))
		}
	}
	return counts
}

// persist выполняет атомарный insert-if-absent по естественному ключу.
// Отдельная проверка существования перед вставкой недостаточна при
// конкуренции, поэтому конфликт разрешается самим хранилищем.
func (is *IngestService) persist(ctx context.Context, raw models.RawPost) (int64, error) {
	item := models.NewFeedItem(raw, is.now())
	res := db.GetWriteDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}, {Name: "source"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
