package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
)

func getRedisClient(t *testing.T) *goredis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestIdempotencyStore_ReservaGuardaYRepite(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	s := NewIdempotencyStore(client, time.Minute)
	key := s.Key("orders", uuid.NewString())
	t.Cleanup(func() { client.Del(ctx, key) })

	first, err := s.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := s.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, second)

	pending, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, pending, "en curso todavía no hay respuesta")

	require.NoError(t, s.Save(ctx, key, dto.CachedResponse{Status: 200, ContentType: "application/json", Body: []byte(`{"confirmed":true}`)}))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 200, got.Status)
	assert.JSONEq(t, `{"confirmed":true}`, string(got.Body))
}

func TestIdempotencyStore_ReleasePermiteReintentar(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	s := NewIdempotencyStore(client, time.Minute)
	key := s.Key("orders", uuid.NewString())

	ok, err := s.Reserve(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, s.Release(ctx, key))

	ok, err = s.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	client.Del(ctx, key)
}
