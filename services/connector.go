package services

import (
	"context"
	"net/http"

	"creatorhub/config"
	"creatorhub/models"
)

// SourceConnector - коннектор одного внешнего источника. Fetch выполняет
// всю специфичную для провайдера работу (аутентификация, нормализация
// полей) и возвращает конечную последовательность постов. Ошибка Fetch
// не фатальна: пайплайн деградирует до "ноль результатов" от источника.
type SourceConnector interface {
	Source() models.FeedSource
	Fetch(ctx context.Context) ([]models.RawPost, error)
}

// HTTPClient позволяет подменять транспорт в тестах
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BuildConnectors собирает коннекторы для всех сконфигурированных источников
func BuildConnectors(conf config.SourcesConfig) []SourceConnector {
	return []SourceConnector{
		NewTwitterConnector(conf),
		NewRedditConnector(conf),
	}
}
