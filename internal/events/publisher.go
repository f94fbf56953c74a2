package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits storefront events to RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher opens a channel and declares the queues it publishes to.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(OrderCompletedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderCompletedQueue, err)
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishOrderCompleted emits the completed-order notification.
func (p *Publisher) PublishOrderCompleted(ctx context.Context, orderID, userID, discountID, promoID string) error {
	ev := OrderCompleted{
		EventType:  "OrderCompleted",
		OrderID:    orderID,
		UserID:     userID,
		DiscountID: discountID,
		PromoID:    promoID,
		Timestamp:  time.Now().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCompleted: %w", err)
	}
	return p.publishJSON(ctx, OrderCompletedQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",         // default exchange
		routingKey, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
