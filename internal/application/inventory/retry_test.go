package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, outcomeDone, classify(nil))
	assert.Equal(t, outcomeRetry, classify(fmt.Errorf("commit: %w", domain.ErrStorageConflict)))
	assert.Equal(t, outcomeFatal, classify(domain.ErrInvalidInput))
	assert.Equal(t, outcomeFatal, classify(context.Canceled))
}

func TestWithRetry_ReintentaHastaExito(t *testing.T) {
	calls := 0
	n, err := withRetry(context.Background(), fastPolicy(3), logger.Nop(), "test", func(_ context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if calls < 3 {
			return domain.ErrStorageConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestWithRetry_AgotaIntentos(t *testing.T) {
	last := fmt.Errorf("serialización: %w", domain.ErrStorageConflict)
	n, err := withRetry(context.Background(), fastPolicy(3), logger.Nop(), "test", func(context.Context, int) error {
		return last
	})
	require.Error(t, err)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.ErrorIs(t, err, domain.ErrStorageConflict)
}

func TestWithRetry_ErrorFatalNoSeReintenta(t *testing.T) {
	fatal := errors.New("disco lleno")
	n, err := withRetry(context.Background(), fastPolicy(5), logger.Nop(), "test", func(context.Context, int) error {
		return fatal
	})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, fatal)
	assert.NotErrorIs(t, err, domain.ErrRetriesExhausted)
}

func TestWithRetry_UnSoloIntento(t *testing.T) {
	n, err := withRetry(context.Background(), fastPolicy(1), logger.Nop(), "test", func(context.Context, int) error {
		return domain.ErrStorageConflict
	})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
}

func TestWithRetry_ContextoCanceladoDetieneReintentos(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := RetryPolicy{MaxAttempts: 10, InitialInterval: time.Second, MaxInterval: time.Second}
	n, err := withRetry(ctx, policy, logger.Nop(), "test", func(context.Context, int) error {
		cancel()
		return domain.ErrStorageConflict
	})
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, context.Canceled)
}
