package events

import (
	"context"
	"fmt"
	"sync"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/streadway/amqp"
)

// RabbitPublisher sends StatusChanged events to a topic exchange.
// Routing key: status.<entity>.<action>
type RabbitPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(amqpURL, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func RoutingKey(evt domain.StatusChanged) string {
	return fmt.Sprintf("status.%s.%s", evt.Entity, evt.Action)
}

func (p *RabbitPublisher) Publish(ctx context.Context, evt domain.StatusChanged) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// amqp.Channel is not safe for concurrent publishes.
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(p.exchange, RoutingKey(evt), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.At,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.WithContext(ctx).Debug().Str("routing_key", RoutingKey(evt)).Str("exchange", p.exchange).Msg("Event published")
	return nil
}

func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
