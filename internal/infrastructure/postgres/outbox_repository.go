package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo escribe eventos en outbox_events dentro de la tx del caso de uso.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador.
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Append inserta el evento en estado pending.
func (r *OutboxRepo) Append(ctx context.Context, event *entity.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (event_id, aggregate_type, aggregate_id, event_type, payload, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		event.EventID, event.AggregateType, event.AggregateID, event.Type, []byte(event.Payload),
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	event.Status = entity.OutboxStatusPending
	return nil
}

// OutboxStore lado del relay: reserva lotes con lease y marca el resultado de la publicación.
type OutboxStore struct {
	pool *pgxpool.Pool
}

// NewOutboxStore construye el store del relay.
func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

// LockBatch reserva eventos pendientes, fallidos reintentables o con lease vencido.
// FOR UPDATE SKIP LOCKED permite varios relays en paralelo sin entregar dos veces el mismo lote.
func (s *OutboxStore) LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]*entity.OutboxEvent, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, payload, status, attempts, COALESCE(last_error, ''), created_at
		FROM outbox_events
		WHERE status = 'pending'
		   OR (status = 'failed' AND attempts < $2)
		   OR (status = 'in_progress' AND lease_until < now())
		ORDER BY id
		FOR UPDATE SKIP LOCKED
		LIMIT $1`, batchSize, entity.OutboxMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("lock outbox batch: %w", err)
	}
	var events []*entity.OutboxEvent
	for rows.Next() {
		var e entity.OutboxEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventID, &e.AggregateType, &e.AggregateID, &e.Type, &payload, &e.Status, &e.Attempts, &e.LastError, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, &e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	_, err = tx.Exec(ctx, `
		UPDATE outbox_events
		SET status = 'in_progress', relay_id = $1, lease_until = now() + $2::interval
		WHERE id = ANY($3)`, relayID, fmt.Sprintf("%d milliseconds", lease.Milliseconds()), ids)
	if err != nil {
		return nil, fmt.Errorf("lease outbox batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// MarkSent marca los eventos como publicados.
func (s *OutboxStore) MarkSent(ctx context.Context, ids []int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox_events SET status = 'sent', sent_at = now() WHERE id = ANY($1)`, ids)
	return err
}

// MarkFailed registra el intento fallido; el relay lo reintenta hasta OutboxMaxAttempts.
func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE outbox_events SET status = 'failed', last_error = $2, attempts = attempts + 1
		WHERE id = $1`, id, errMsg)
	return err
}
