package inventory

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/Logistica-api/internal/domain"
	"github.com/jhoicas/Logistica-api/internal/domain/entity"
	"github.com/jhoicas/Logistica-api/internal/domain/inventory"
	"github.com/jhoicas/Logistica-api/internal/domain/repository"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/Logistica-api/internal/application/inventory")

// PlaceOrderUseCase asigna una orden a una única bodega con stock suficiente, sin sobreventa.
// Cada intento corre en su propia transacción; los conflictos transitorios reinician el intento completo.
type PlaceOrderUseCase struct {
	txRunner TxRunner
	policy   RetryPolicy
	log      *logger.Logger
	now      func() time.Time
}

// NewPlaceOrderUseCase construye el caso de uso.
func NewPlaceOrderUseCase(txRunner TxRunner, policy RetryPolicy, log *logger.Logger) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		txRunner: txRunner,
		policy:   policy,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrderInput entrada de PlaceOrder. PreferredWarehouse es opcional (nombre de bodega).
type PlaceOrderInput struct {
	ProductName        string
	Units              int
	Latitude           float64
	Longitude          float64
	PreferredWarehouse string
}

func (in PlaceOrderInput) validate() error {
	if entity.CanonicalName(in.ProductName) == "" {
		return fmt.Errorf("%w: product_name requerido", domain.ErrInvalidInput)
	}
	if in.Units <= 0 {
		return fmt.Errorf("%w: units debe ser mayor que 0", domain.ErrInvalidInput)
	}
	if !inventory.ValidCoordinates(in.Latitude, in.Longitude) {
		return fmt.Errorf("%w: coordenadas fuera de rango", domain.ErrInvalidInput)
	}
	return nil
}

// PlaceOrder registra la orden y la confirma (true) o la rechaza (false).
// El rechazo por falta de stock es un resultado normal, no un error.
// 1. Bodega preferida: si existe, está activa y tiene stock suficiente, se descuenta ahí.
// 2. Si no, la bodega activa más cercana con stock suficiente; el descuento se valida contra la fila bloqueada.
// 3. Si la carrera se pierde o no hay candidatas, la orden queda REJECTED.
func (uc *PlaceOrderUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*entity.Order, bool, error) {
	if err := input.validate(); err != nil {
		return nil, false, err
	}
	ctx, span := tracer.Start(ctx, "inventory.PlaceOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("product", input.ProductName),
		attribute.Int("units", input.Units),
	)

	var order *entity.Order
	attempts, err := withRetry(ctx, uc.policy, uc.log, "place_order", func(ctx context.Context, n int) error {
		order = nil
		return uc.txRunner.Run(ctx, func(repos repository.Repos) error {
			o, err := uc.attempt(ctx, repos, input)
			if err != nil {
				return err
			}
			order = o
			return nil
		})
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.log.Error().Err(err).Str("product", input.ProductName).Int("units", input.Units).Int("attempts", attempts).Msg("place order falló")
		return nil, false, err
	}

	span.SetAttributes(attribute.String("outcome", order.Status))
	uc.log.Info().
		Int64("order_id", order.ID).
		Str("product", order.ProductName).
		Int("units", order.Units).
		Str("status", order.Status).
		Str("warehouse", order.AssignedWarehouse).
		Int("attempts", attempts).
		Msg("orden finalizada")
	return order, order.IsConfirmed(), nil
}

// attempt es un intento completo dentro de una transacción. No conserva estado entre intentos.
func (uc *PlaceOrderUseCase) attempt(ctx context.Context, repos repository.Repos, input PlaceOrderInput) (*entity.Order, error) {
	product, err := repos.Products.GetOrCreateByName(ctx, entity.CanonicalName(input.ProductName))
	if err != nil {
		return nil, err
	}
	order := entity.NewPendingOrder(product, input.Units, uc.now())
	if err := repos.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	wh, err := uc.allocate(ctx, repos, product.ID, input)
	if err != nil {
		return nil, err
	}
	if wh != nil {
		err = order.Confirm(wh, uc.now())
	} else {
		err = order.Reject(uc.now())
	}
	if err != nil {
		return nil, err
	}
	if err := repos.Orders.Finalize(ctx, order); err != nil {
		return nil, err
	}
	ev, err := orderEvent(order)
	if err != nil {
		return nil, err
	}
	if err := repos.Outbox.Append(ctx, ev); err != nil {
		return nil, err
	}
	return order, nil
}

// allocate devuelve la bodega de la que se descontaron las unidades, o nil si no hubo stock.
func (uc *PlaceOrderUseCase) allocate(ctx context.Context, repos repository.Repos, productID int64, input PlaceOrderInput) (*entity.Warehouse, error) {
	if name := entity.CanonicalName(input.PreferredWarehouse); name != "" {
		wh, ok, err := uc.tryPreferred(ctx, repos, productID, name, input.Units)
		if err != nil {
			return nil, err
		}
		if ok {
			return wh, nil
		}
	}

	candidates, err := repos.Stock.ListWithStock(ctx, productID, input.Units)
	if err != nil {
		return nil, err
	}
	best := inventory.Nearest(candidates, input.Latitude, input.Longitude)
	if best == nil {
		return nil, nil
	}
	locked, err := repos.Stock.GetForUpdate(ctx, productID, best.WarehouseID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, nil
	}
	ok, err := repos.Stock.TryDecrement(ctx, locked, input.Units)
	if err != nil {
		return nil, err
	}
	if !ok {
		// otra transacción consumió el stock entre el escaneo y el bloqueo
		uc.log.Debug().Int64("warehouse_id", best.WarehouseID).Msg("stock consumido por otra orden")
		return nil, nil
	}
	return best.Warehouse, nil
}

// tryPreferred intenta descontar en la bodega pedida. Ausencia o stock insuficiente no son errores.
func (uc *PlaceOrderUseCase) tryPreferred(ctx context.Context, repos repository.Repos, productID int64, name string, units int) (*entity.Warehouse, bool, error) {
	wh, err := repos.Warehouses.GetByName(ctx, name)
	if err != nil || wh == nil || !wh.Active {
		return nil, false, err
	}
	rec, err := repos.Stock.GetForUpdate(ctx, productID, wh.ID)
	if err != nil || rec == nil {
		return nil, false, err
	}
	ok, err := repos.Stock.TryDecrement(ctx, rec, units)
	if err != nil || !ok {
		return nil, false, err
	}
	return wh, true, nil
}
