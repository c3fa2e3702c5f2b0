package inventory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// RestockUseCase suma unidades a un registro de stock, creando producto, bodega y registro si faltan.
type RestockUseCase struct {
	txRunner TxRunner
	policy   RetryPolicy
	log      *logger.Logger
}

// NewRestockUseCase construye el caso de uso.
func NewRestockUseCase(txRunner TxRunner, policy RetryPolicy, log *logger.Logger) *RestockUseCase {
	return &RestockUseCase{txRunner: txRunner, policy: policy, log: log}
}

// RestockInput entrada de Restock. Latitud y longitud solo se usan al crear una bodega nueva.
type RestockInput struct {
	ProductName   string
	Units         int
	WarehouseName string
	Latitude      *float64
	Longitude     *float64
	Capacity      *int
}

func (in RestockInput) validate() error {
	if entity.CanonicalName(in.ProductName) == "" || entity.CanonicalName(in.WarehouseName) == "" {
		return fmt.Errorf("%w: producto y bodega requeridos", domain.ErrInvalidInput)
	}
	if in.Units <= 0 {
		return fmt.Errorf("%w: units debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return fmt.Errorf("%w: latitud y longitud van juntas", domain.ErrInvalidInput)
	}
	if in.Latitude != nil && !inventory.ValidCoordinates(*in.Latitude, *in.Longitude) {
		return fmt.Errorf("%w: coordenadas fuera de rango", domain.ErrInvalidInput)
	}
	if in.Capacity != nil && *in.Capacity < 0 {
		return fmt.Errorf("%w: capacity no puede ser negativa", domain.ErrInvalidInput)
	}
	return nil
}

// Restock aplica la reposición bajo el bloqueo de la fila y devuelve el registro actualizado
// (con su bodega). Usa la misma disciplina de reintentos que PlaceOrder.
func (uc *RestockUseCase) Restock(ctx context.Context, input RestockInput) (*entity.StockRecord, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "inventory.Restock")
	defer span.End()
	span.SetAttributes(
		attribute.String("product", input.ProductName),
		attribute.String("warehouse", input.WarehouseName),
		attribute.Int("units", input.Units),
	)

	var result *entity.StockRecord
	attempts, err := withRetry(ctx, uc.policy, uc.log, "restock", func(ctx context.Context, _ int) error {
		result = nil
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			rec, err := uc.attempt(ctx, repos, input)
			if err != nil {
				return err
			}
			result = rec
			return nil
		})
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.log.Error().Err(err).Str("product", input.ProductName).Str("warehouse", input.WarehouseName).Msg("restock falló")
		return nil, err
	}
	uc.log.Info().
		Str("product", input.ProductName).
		Str("warehouse", result.Warehouse.Name).
		Int("units", input.Units).
		Int("quantity", result.Quantity).
		Msg("stock repuesto")
	return result, nil
}

func (uc *RestockUseCase) attempt(ctx context.Context, repos repository.Repos, input RestockInput) (*entity.StockRecord, error) {
	product, err := repos.Products.GetOrCreateByName(ctx, entity.CanonicalName(input.ProductName))
	if err != nil {
		return nil, err
	}
	wh, err := uc.resolveWarehouse(ctx, repos, input)
	if err != nil {
		return nil, err
	}
	if _, err := repos.Stock.GetOrCreate(ctx, product.ID, wh.ID); err != nil {
		return nil, err
	}
	rec, err := repos.Stock.GetForUpdate(ctx, product.ID, wh.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("registro de stock %d/%d: %w", product.ID, wh.ID, domain.ErrNotFound)
	}
	if err := repos.Stock.Increment(ctx, rec, input.Units); err != nil {
		return nil, err
	}
	rec.Warehouse = wh

	ev, err := restockEvent(product, wh, input.Units, rec)
	if err != nil {
		return nil, err
	}
	if err := repos.Outbox.Append(ctx, ev); err != nil {
		return nil, err
	}
	return rec, nil
}

// resolveWarehouse busca la bodega por nombre; si no existe la crea con las coordenadas recibidas.
func (uc *RestockUseCase) resolveWarehouse(ctx context.Context, repos repository.Repos, input RestockInput) (*entity.Warehouse, error) {
	name := entity.CanonicalName(input.WarehouseName)
	wh, err := repos.Warehouses.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if wh != nil {
		return wh, nil
	}
	if input.Latitude == nil {
		return nil, domain.ErrWarehouseLocationRequired
	}
	return repos.Warehouses.GetOrCreate(ctx, &entity.Warehouse{
		Name:      name,
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
		Capacity:  input.Capacity,
		Active:    true,
	})
}
