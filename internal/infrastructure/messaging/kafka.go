package messaging

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// Producer subconjunto de *kafka.Writer.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter writer con batching corto para baja latencia.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireAll,
	}
}

// KafkaPublisher publica cada evento con el aggregate como clave, así los eventos de una
// misma orden o registro de stock conservan el orden dentro de la partición.
type KafkaPublisher struct {
	producer Producer
}

// NewKafkaPublisher construye el publicador.
func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish escribe el mensaje con cabeceras de tipo e id de evento.
func (p *KafkaPublisher) Publish(ctx context.Context, event *entity.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateType + ":" + event.AggregateID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
		Time: event.CreatedAt,
	}
	return p.producer.WriteMessages(ctx, msg)
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
