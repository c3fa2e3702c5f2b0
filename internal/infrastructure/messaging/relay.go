// Package messaging publica los eventos del outbox transaccional en un broker.
package messaging

import (
	"context"
	"time"

	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// Store lado de lectura del outbox (postgres.OutboxStore o memory.Store).
type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]*entity.OutboxEvent, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}

// Publisher entrega un evento al broker.
type Publisher interface {
	Publish(ctx context.Context, event *entity.OutboxEvent) error
	Close() error
}

// RelayConfig parámetros del relay.
type RelayConfig struct {
	RelayID   string
	BatchSize int
	Interval  time.Duration
	Lease     time.Duration
}

// Relay lee lotes del outbox y los publica. Entrega al menos una vez: un evento se marca
// como enviado solo después de publicarse.
type Relay struct {
	log       *logger.Logger
	store     Store
	publisher Publisher
	cfg       RelayConfig
}

// NewRelay construye el relay con valores por defecto para los campos vacíos.
func NewRelay(log *logger.Logger, store Store, publisher Publisher, cfg RelayConfig) *Relay {
	if cfg.RelayID == "" {
		cfg.RelayID = "relay"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 30 * time.Second
	}
	return &Relay{log: log, store: store, publisher: publisher, cfg: cfg}
}

// Run procesa lotes en cada tick hasta que ctx se cancela.
func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Str("relay_id", r.cfg.RelayID).Msg("relay detenido")
			return nil
		case <-t.C:
			if _, err := r.Drain(ctx); err != nil {
				r.log.Error().Err(err).Str("relay_id", r.cfg.RelayID).Msg("relay: error procesando lote")
			}
		}
	}
}

// Drain procesa un lote y devuelve cuántos eventos se publicaron.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	events, err := r.store.LockBatch(ctx, r.cfg.RelayID, r.cfg.BatchSize, r.cfg.Lease)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	sent := make([]int64, 0, len(events))
	for _, e := range events {
		if err := r.publisher.Publish(ctx, e); err != nil {
			r.log.Warn().Err(err).Str("event_id", e.EventID).Str("type", e.Type).Msg("relay: publicación fallida")
			if mErr := r.store.MarkFailed(ctx, e.ID, err.Error()); mErr != nil {
				r.log.Error().Err(mErr).Int64("id", e.ID).Msg("relay: mark failed")
			}
			continue
		}
		sent = append(sent, e.ID)
	}
	if len(sent) > 0 {
		if err := r.store.MarkSent(ctx, sent); err != nil {
			return 0, err
		}
	}
	r.log.Debug().Int("sent", len(sent)).Int("batch", len(events)).Msg("relay: lote procesado")
	return len(sent), nil
}

// NopPublisher descarta los eventos; se usa con EVENTS_BROKER=none.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *entity.OutboxEvent) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
