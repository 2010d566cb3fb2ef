// Package events publishes booking lifecycle events to RabbitMQ so
// downstream consumers (notifications, reporting) can react without being in
// the request path. Publish failures are logged and swallowed; they never
// fail the booking operation that triggered them.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueBookingCreated   = "booking.created"
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	RoomID      string    `json:"room_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher struct {
	url    string
	logger *slog.Logger
}

// NewPublisher returns a publisher, or nil when no AMQP URL is configured;
// a nil *Publisher is safe to call and drops every event.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, queue string, event BookingEvent) {
	if p == nil {
		return
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq dial failed", "queue", queue, "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq channel open failed", "queue", queue, "error", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Durable queue, idempotent declare; messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.logger.Warn("rabbitmq queue declare failed", "queue", queue, "error", err)
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("event marshal failed", "queue", queue, "error", err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.logger.Warn("rabbitmq publish failed", "queue", queue, "error", err)
		return
	}
}
