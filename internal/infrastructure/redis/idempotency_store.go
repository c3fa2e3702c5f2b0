// Package redis guarda respuestas HTTP por Idempotency-Key para repetirlas ante reintentos del cliente.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
)

const pendingMarker = "pending"

// IdempotencyStore reserva claves con SETNX y guarda la respuesta final con el mismo TTL.
type IdempotencyStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewIdempotencyStore construye el store.
func NewIdempotencyStore(rdb *goredis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// Key espacio de nombres de las claves.
func (s *IdempotencyStore) Key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

// Reserve devuelve true si la clave no existía (primera petición).
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, pendingMarker, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Get devuelve la respuesta guardada; nil, nil si la clave no existe o la petición original sigue en curso.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*dto.CachedResponse, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	if string(raw) == pendingMarker {
		return nil, nil
	}
	var resp dto.CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode cached response: %w", err)
	}
	return &resp, nil
}

// Save guarda la respuesta final.
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp dto.CachedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode cached response: %w", err)
	}
	return s.rdb.Set(ctx, key, raw, s.ttl).Err()
}

// Release libera la clave para que el cliente pueda reintentar (errores 5xx).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
