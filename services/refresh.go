package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"creatorhub/db"
	"creatorhub/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	refreshLockKey = "feed:refresh:lock"
	refreshLockTTL = time.Minute
)

// RefreshCoordinator решает, пора ли запускать инжест, и гарантирует не
// более одного прохода одновременно. Межпроцессная блокировка - условная
// запись SetNX в Redis (держится при горизонтальном масштабировании),
// локальные конкуренты ждут завершения текущего прохода через канал.
// Чтение ленты никогда не блокируется дольше waitTimeout.
type RefreshCoordinator struct {
	ingest      *IngestService
	connectors  []SourceConnector
	staleness   time.Duration
	waitTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	inflight chan struct{}
}

func NewRefreshCoordinator(ingest *IngestService, connectors []SourceConnector, staleness, waitTimeout time.Duration) *RefreshCoordinator {
	return &RefreshCoordinator{
		ingest:      ingest,
		connectors:  connectors,
		staleness:   staleness,
		waitTimeout: waitTimeout,
		now:         time.Now,
	}
}

// EnsureFresh вызывается на чтении первой страницы. Если лента устарела,
// запускает проход инжеста; если проход уже идет, ждет его завершения в
// пределах waitTimeout и возвращается - чтение продолжается по тому,
// что есть в хранилище. Ошибки обновления никогда не доходят до читателя.
func (rc *RefreshCoordinator) EnsureFresh(ctx context.Context) {
	rc.mu.Lock()
	if rc.inflight != nil {
		ch := rc.inflight
		rc.mu.Unlock()
		rc.waitDone(ctx, ch)
		return
	}
	rc.mu.Unlock()

	if !rc.refreshDue(ctx) {
		return
	}

	rc.mu.Lock()
	// Повторная проверка: пока мы опрашивали БД, лидером мог стать другой
	if rc.inflight != nil {
		ch := rc.inflight
		rc.mu.Unlock()
		rc.waitDone(ctx, ch)
		return
	}
	ch := make(chan struct{})
	rc.inflight = ch
	rc.mu.Unlock()

	defer func() {
		rc.mu.Lock()
		rc.inflight = nil
		rc.mu.Unlock()
		close(ch)
	}()

	// Срок проверяется заново уже в роли лидера: конкурент мог завершить
	// проход между первой проверкой и взятием лидерства
	if !rc.refreshDue(ctx) {
		return
	}

	token, acquired := rc.acquireRemoteLock(ctx)
	if !acquired {
		// Проход идет на другом инстансе: ждем освобождения ключа
		rc.waitRemote(ctx)
		return
	}
	defer rc.releaseRemoteLock(token)

	counts := rc.ingest.Run(ctx, rc.connectors)

	var total int64
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		feedRefreshTotal.WithLabelValues("ok").Inc()
		InvalidateFeedCache(ctx)
	} else {
		feedRefreshTotal.WithLabelValues("empty").Inc()
	}
	PublishIngestEvent(ctx, counts)
}

// refreshDue проверяет возраст самого свежего элемента ленты
func (rc *RefreshCoordinator) refreshDue(ctx context.Context) bool {
	var newest models.FeedItem
	err := db.GetReadOnlyDB(ctx).Order("created_at DESC").First(&newest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	if err != nil {
		log.Printf("WARN: staleness check failed, serving store as-is: %v", err)
		return false
	}
	return rc.now().Sub(newest.CreatedAt) > rc.staleness
}

// Удаление ключа условно по владельцу: если проход пережил TTL и ключ
// успел перехватить другой инстанс, чужой маркер трогать нельзя
var releaseLockScript = redis.NewScript(
	`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`,
)

// acquireRemoteLock пытается условно записать маркер прохода со случайным
// токеном владельца. Без Redis деградируем до локальной single-flight
// гарантии.
func (rc *RefreshCoordinator) acquireRemoteLock(ctx context.Context) (string, bool) {
	if RedisClient == nil {
		return "", true
	}
	token := newLockToken()
	ok, err := RedisClient.SetNX(ctx, refreshLockKey, token, refreshLockTTL).Result()
	if err != nil {
		log.Printf("WARN: refresh lock unavailable, falling back to local guard: %v", err)
		return "", true
	}
	if !ok {
		return "", false
	}
	return token, true
}

// releaseRemoteLock снимает маркер, только если он все еще наш
func (rc *RefreshCoordinator) releaseRemoteLock(token string) {
	if RedisClient == nil || token == "" {
		return
	}
	if err := releaseLockScript.Run(context.Background(), RedisClient, []string{refreshLockKey}, token).Err(); err != nil {
		// TTL подчистит ключ сам
		log.Printf("WARN: failed to release refresh lock: %v", err)
	}
}

func newLockToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(buf)
}

// waitDone ждет завершения локального прохода, но не дольше waitTimeout
func (rc *RefreshCoordinator) waitDone(ctx context.Context, ch <-chan struct{}) {
	timer := time.NewTimer(rc.waitTimeout)
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
	case <-ctx.Done():
	}
}

// waitRemote опрашивает ключ блокировки, пока проход на другом инстансе
// не завершится или не истечет waitTimeout
func (rc *RefreshCoordinator) waitRemote(ctx context.Context) {
	deadline := rc.now().Add(rc.waitTimeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for rc.now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		exists, err := RedisClient.Exists(ctx, refreshLockKey).Result()
		if err != nil || exists == 0 {
			return
		}
	}
}
