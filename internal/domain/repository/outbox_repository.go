package repository

import (
	"context"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
)

// OutboxRepository registra eventos dentro de la transacción del caso de uso.
type OutboxRepository interface {
	Append(ctx context.Context, event *entity.OutboxEvent) error
}
