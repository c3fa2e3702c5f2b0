package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain"
)

func TestGetInventory_ListaPorBodega(t *testing.T) {
	f := newFixture()
	f.addStock(t, "Widget", "W2", 8, 0.45, 0)
	f.addStock(t, "Widget", "W1", 5, 0.009, 0)

	list, err := f.query.GetInventory(context.Background(), "Widget")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "W2", list[0].Warehouse.Name, "ordenado por id de bodega")
	assert.Equal(t, 8, list[0].Quantity)
	assert.Equal(t, "W1", list[1].Warehouse.Name)
}

func TestGetInventory_ProductoNuevoListaVacia(t *testing.T) {
	f := newFixture()
	list, err := f.query.GetInventory(context.Background(), "Nuevo")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.query.GetInventory(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetOrder(t *testing.T) {
	f := newFixture()
	f.addStock(t, "Widget", "W1", 5, 0, 0)
	placed, _, err := f.orders.PlaceOrder(context.Background(), inventory.PlaceOrderInput{ProductName: "Widget", Units: 2})
	require.NoError(t, err)

	got, err := f.query.GetOrder(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.Status, got.Status)
	assert.Equal(t, "W1", got.AssignedWarehouse)

	_, err = f.query.GetOrder(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.query.GetOrder(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
