package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// QueryUseCase consultas de inventario y órdenes.
type QueryUseCase struct {
	txRunner TxRunner
	policy   RetryPolicy
	log      *logger.Logger
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(txRunner TxRunner, policy RetryPolicy, log *logger.Logger) *QueryUseCase {
	return &QueryUseCase{txRunner: txRunner, policy: policy, log: log}
}

// GetInventory lista el stock del producto por bodega. El producto se crea si no existía,
// de modo que un producto nuevo responde con una lista vacía.
func (uc *QueryUseCase) GetInventory(ctx context.Context, productName string) ([]*entity.StockRecord, error) {
	name := entity.CanonicalName(productName)
	if name == "" {
		return nil, fmt.Errorf("%w: product_name requerido", domain.ErrInvalidInput)
	}
	var list []*entity.StockRecord
	_, err := withRetry(ctx, uc.policy, uc.log, "get_inventory", func(ctx context.Context, _ int) error {
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			product, err := repos.Products.GetOrCreateByName(ctx, name)
			if err != nil {
				return err
			}
			list, err = repos.Stock.ListByProduct(ctx, product.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetOrder devuelve la orden o domain.ErrNotFound.
func (uc *QueryUseCase) GetOrder(ctx context.Context, id int64) (*entity.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id inválido", domain.ErrInvalidInput)
	}
	var order *entity.Order
	_, err := withRetry(ctx, uc.policy, uc.log, "get_order", func(ctx context.Context, _ int) error {
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			o, err := repos.Orders.GetByID(ctx, id)
			order = o
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}
