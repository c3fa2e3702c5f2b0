package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// amqpChannel subconjunto de *amqp.Channel que usa el publicador.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publica en un exchange topic usando el tipo de evento como routing key.
type RabbitPublisher struct {
	ch       amqpChannel
	exchange string
}

// NewRabbitPublisher abre un canal y declara el exchange (topic, durable).
func NewRabbitPublisher(conn *amqp.Connection, exchange string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitPublisher{ch: ch, exchange: exchange}, nil
}

// Publish envía el payload JSON como mensaje persistente.
func (p *RabbitPublisher) Publish(ctx context.Context, event *entity.OutboxEvent) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(pubCtx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         event.Type,
		Timestamp:    event.CreatedAt,
		Headers: amqp.Table{
			"aggregate_type": event.AggregateType,
			"aggregate_id":   event.AggregateID,
		},
		Body: event.Payload,
	})
}

// Close cierra el canal.
func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}
