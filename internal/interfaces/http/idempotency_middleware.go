package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Logistica-api/internal/application/dto"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// Cabeceras del protocolo de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// IdempotencyStore lo que el middleware necesita del store (Redis en producción).
type IdempotencyStore interface {
	Key(scope, key string) string
	Reserve(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) (*dto.CachedResponse, error)
	Save(ctx context.Context, key string, resp dto.CachedResponse) error
	Release(ctx context.Context, key string) error
}

// Idempotency repite la primera respuesta para peticiones con el mismo Idempotency-Key.
// Sin cabecera la petición pasa tal cual. Si el store no responde se atiende sin cache.
// Las respuestas 5xx liberan la clave para que el cliente pueda reintentar.
func Idempotency(store IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderIdempotencyKey)
		if raw == "" {
			return c.Next()
		}
		ctx := c.UserContext()
		key := store.Key(GetUserID(c)+":"+c.Method()+":"+c.Path(), raw)

		first, err := store.Reserve(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", raw).Msg("idempotencia no disponible, se atiende sin cache")
			return c.Next()
		}
		if !first {
			cached, err := store.Get(ctx, key)
			if err != nil {
				log.Warn().Err(err).Str("key", raw).Msg("leer respuesta cacheada")
			}
			if cached == nil {
				return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "petición con la misma Idempotency-Key en curso"})
			}
			c.Set(HeaderReplayed, "true")
			c.Set(fiber.HeaderContentType, cached.ContentType)
			return c.Status(cached.Status).Send(cached.Body)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, key)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if err := store.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", raw).Msg("liberar idempotency key")
			}
			return nil
		}
		resp := dto.CachedResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, key, resp); err != nil {
			log.Warn().Err(err).Str("key", raw).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}
