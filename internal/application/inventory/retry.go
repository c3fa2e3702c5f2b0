package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// RetryPolicy controla los reintentos ante conflictos transitorios del almacenamiento.
// MaxAttempts cuenta intentos totales (3 = un intento inicial y dos reintentos).
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy tres intentos con backoff exponencial corto.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetry
	outcomeFatal
)

// classify decide qué hacer con el resultado de un intento.
// Solo ErrStorageConflict se reintenta; el rechazo de negocio no es un error.
func classify(err error) outcome {
	switch {
	case err == nil:
		return outcomeDone
	case errors.Is(err, domain.ErrStorageConflict):
		return outcomeRetry
	default:
		return outcomeFatal
	}
}

func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0
	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// withRetry ejecuta attempt desde cero en cada intento. Devuelve el número de intentos usados.
// Al agotar los intentos el error envuelve ErrRetriesExhausted y el último error de almacenamiento.
func withRetry(ctx context.Context, p RetryPolicy, log *logger.Logger, op string, attempt func(ctx context.Context, n int) error) (int, error) {
	var (
		n    int
		last error
	)
	err := backoff.RetryNotify(func() error {
		n++
		err := attempt(ctx, n)
		switch classify(err) {
		case outcomeDone:
			return nil
		case outcomeRetry:
			last = err
			return err
		default:
			return backoff.Permanent(err)
		}
	}, p.newBackOff(ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("op", op).Int("attempt", n).Dur("backoff", wait).Msg("conflicto transitorio, reintentando")
	})
	if err == nil {
		return n, nil
	}
	if last != nil && errors.Is(err, domain.ErrStorageConflict) {
		return n, fmt.Errorf("%s: %w tras %d intentos: %w", op, domain.ErrRetriesExhausted, n, last)
	}
	return n, err
}
