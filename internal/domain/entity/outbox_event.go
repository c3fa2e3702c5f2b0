package entity

import (
	"encoding/json"
	"time"
)

// Tipos de evento publicados por el motor.
const (
	EventOrderConfirmed = "order.confirmed"
	EventOrderRejected  = "order.rejected"
	EventStockRestocked = "stock.restocked"
)

// Estados del outbox.
const (
	OutboxStatusPending    = "pending"
	OutboxStatusInProgress = "in_progress"
	OutboxStatusSent       = "sent"
	OutboxStatusFailed     = "failed"
)

// OutboxMaxAttempts intentos de publicación antes de dejar el evento en failed definitivamente.
const OutboxMaxAttempts = 5

// OutboxEvent evento escrito en la misma transacción que el cambio de estado que describe.
type OutboxEvent struct {
	ID            int64
	EventID       string
	AggregateType string
	AggregateID   string
	Type          string
	Payload       json.RawMessage
	Status        string
	Attempts      int
	LastError     string
	CreatedAt     time.Time
	SentAt        *time.Time
}
