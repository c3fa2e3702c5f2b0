package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestStockRepo_TryDecrementConStock(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE stock SET quantity = quantity - $3")).
		WithArgs(int64(1), int64(2), 3).
		WillReturnRows(pgxmock.NewRows([]string{"quantity", "updated_at"}).AddRow(2, now))

	rec := &entity.StockRecord{ProductID: 1, WarehouseID: 2, Quantity: 5}
	ok, err := NewStockRepository(mock).TryDecrement(context.Background(), rec, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, rec.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_TryDecrementSinStockNoCambiaNada(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("AND quantity >= $3")).
		WithArgs(int64(1), int64(2), 10).
		WillReturnRows(pgxmock.NewRows([]string{"quantity", "updated_at"}))

	rec := &entity.StockRecord{ProductID: 1, WarehouseID: 2, Quantity: 3}
	ok, err := NewStockRepository(mock).TryDecrement(context.Background(), rec, 10)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, rec.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_UnidadesInvalidasNoTocanLaBase(t *testing.T) {
	mock := newMock(t)
	repo := NewStockRepository(mock)
	rec := &entity.StockRecord{ProductID: 1, WarehouseID: 2}

	_, err := repo.TryDecrement(context.Background(), rec, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, repo.Increment(context.Background(), rec, -5), domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_GetForUpdateInexistente(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(1), int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "warehouse_id", "quantity", "updated_at"}))

	rec, err := NewStockRepository(mock).GetForUpdate(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_ListWithStockIncluyeBodega(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("s.quantity >= $2 AND w.active")).
		WithArgs(int64(1), 3).
		WillReturnRows(pgxmock.NewRows([]string{
			"product_id", "warehouse_id", "quantity", "updated_at",
			"id", "name", "latitude", "longitude", "capacity", "active", "created_at",
		}).
			AddRow(int64(1), int64(4), 10, now, int64(4), "Bodega Norte", 4.710989, -74.072092, nil, true, now).
			AddRow(int64(1), int64(7), 3, now, int64(7), "Bodega Sur", 4.570868, -74.297333, nil, true, now))

	list, err := NewStockRepository(mock).ListWithStock(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bodega Norte", list[0].Warehouse.Name)
	assert.Equal(t, int64(7), list[1].Warehouse.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetOrCreateInsertaSiNoExiste(t *testing.T) {
	mock := newMock(t)
	cols := []string{"id", "name", "unit_price", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE name = $1")).
		WithArgs("Widget").
		WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products (name) VALUES ($1)")).
		WithArgs("Widget").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(11), "Widget", decimal.Zero, time.Now()))

	p, err := NewProductRepository(mock).GetOrCreateByName(context.Background(), "Widget")
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_GetOrCreateReleeTrasConflicto(t *testing.T) {
	mock := newMock(t)
	cols := []string{"id", "name", "unit_price", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE name = $1")).
		WithArgs("Widget").
		WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (name) DO NOTHING")).
		WithArgs("Widget").
		WillReturnRows(pgxmock.NewRows(cols))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE name = $1")).
		WithArgs("Widget").
		WillReturnRows(pgxmock.NewRows(cols).AddRow(int64(5), "Widget", decimal.Zero, time.Now()))

	p, err := NewProductRepository(mock).GetOrCreateByName(context.Background(), "Widget")
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID, "otra transacción lo creó primero")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_FinalizeSoloPending(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'PENDING'")).
		WithArgs(int64(3), entity.OrderStatusRejected, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	now := time.Now()
	o := &entity.Order{ID: 3, Status: entity.OrderStatusRejected, FinalizedAt: &now}
	err := NewOrderRepository(mock).Finalize(context.Background(), o)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_CommitConLockTimeout(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT set_config('lock_timeout', $1, true)")).
		WithArgs("1500ms").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stock")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM stock WHERE product_id = $1 AND warehouse_id = $2")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"product_id", "warehouse_id", "quantity", "updated_at"}).AddRow(int64(1), int64(2), 0, time.Now()))
	mock.ExpectCommit()

	runner := NewTxRunner(mock, 1500*time.Millisecond)
	err := runner.Run(context.Background(), func(repos repository.Repos) error {
		_, err := repos.Stock.GetOrCreate(context.Background(), 1, 2)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_DeadlockSeClasificaComoConflicto(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(1), int64(2)).
		WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	mock.ExpectRollback()

	runner := NewTxRunner(mock, 0)
	err := runner.Run(context.Background(), func(repos repository.Repos) error {
		_, err := repos.Stock.GetForUpdate(context.Background(), 1, 2)
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageConflict)
	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr, "el error original se conserva")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil))
	for _, code := range []string{"40001", "40P01", "55P03"} {
		assert.ErrorIs(t, classifyError(&pgconn.PgError{Code: code}), domain.ErrStorageConflict, code)
	}
	assert.NotErrorIs(t, classifyError(&pgconn.PgError{Code: "23514"}), domain.ErrStorageConflict)
	assert.NotErrorIs(t, classifyError(domain.ErrInvalidInput), domain.ErrStorageConflict)
}
