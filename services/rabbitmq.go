package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"creatorhub/config"
	"creatorhub/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	rabbitConn     *amqp.Connection
	rabbitChannel  *amqp.Channel
	eventsExchange = "creatorhub_events"
)

// IngestEvent - результат прохода инжеста для внешних потребителей
type IngestEvent struct {
	Counts     map[models.FeedSource]int64 `json:"counts"`
	OccurredAt time.Time                   `json:"occurred_at"`
}

// CreditEvent - факт начисления кредитов
type CreditEvent struct {
	UserID     int64               `json:"user_id"`
	Action     models.CreditAction `json:"action"`
	Amount     int64               `json:"amount"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// InitRabbitMQ инициализирует соединение и exchange. Публикация событий -
// best-effort: без брокера сервис полностью работоспособен.
func InitRabbitMQ() error {
	if config.AppConfig == nil || config.AppConfig.RabbitMQ.URL == "" {
		return fmt.Errorf("rabbitmq url is not configured")
	}
	var err error
	rabbitConn, err = amqp.Dial(config.AppConfig.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	rabbitChannel, err = rabbitConn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	if err := rabbitChannel.ExchangeDeclare(
		eventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	log.Printf("RabbitMQ initialized, exchange: %s", eventsExchange)
	return nil
}

// PublishIngestEvent публикует итоги прохода инжеста.
// Ошибки публикации логируются и не влияют на обработку запроса.
func PublishIngestEvent(ctx context.Context, counts map[models.FeedSource]int64) {
	publish(ctx, "feed.ingested", IngestEvent{
		Counts:     counts,
		OccurredAt: time.Now(),
	})
}

// PublishCreditEvent публикует факт начисления кредитов
func PublishCreditEvent(ctx context.Context, userID int64, action models.CreditAction, amount int64) {
	publish(ctx, fmt.Sprintf("credits.%s", action), CreditEvent{
		UserID:     userID,
		Action:     action,
		Amount:     amount,
		OccurredAt: time.Now(),
	})
}

func publish(ctx context.Context, routingKey string, event interface{}) {
	if rabbitChannel == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("WARN: failed to marshal event %s: %v", routingKey, err)
		return
	}
	err = rabbitChannel.PublishWithContext(ctx,
		eventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("WARN: failed to publish event %s: %v", routingKey, err)
	}
}

func CloseRabbitMQ() {
	if rabbitChannel != nil {
		_ = rabbitChannel.Close()
	}
	if rabbitConn != nil {
		_ = rabbitConn.Close()
	}
}
