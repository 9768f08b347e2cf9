package inventory

import (
	"context"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-engine/internal/domain/inventory"
	"github.com/jhoicas/inventario-engine/pkg/logger"
)

// Deduction descuento aplicado en una bodega.
type Deduction struct {
	ProductID     string
	WarehouseID   string
	WarehouseName string
	Before        int
	After         int
}

// Allocator convierte "descontar N unidades de P" en descuentos por bodega, en orden alfabético de bodega.
type Allocator struct {
	ledger *Ledger
	log    *logger.Logger
}

// NewAllocator construye el allocator sobre un ledger atado a la transacción.
func NewAllocator(ledger *Ledger, log *logger.Logger) *Allocator {
	return &Allocator{ledger: ledger, log: log}
}

// Deduct descuenta requested unidades del producto. Sin stock en ninguna bodega devuelve
// InsufficientStock antes de escribir; si el recorrido no cubre la demanda devuelve
// AllocationShortfall sin escribir nada.
func (a *Allocator) Deduct(ctx context.Context, product *entity.Product, requested int, actor string) ([]Deduction, error) {
	if requested <= 0 {
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	sources, err := a.ledger.LockSources(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   requested,
			Available:   0,
		}
	}

	takes, remaining := invdomain.Allocate(sources, requested)
	if remaining > 0 {
		allocationShortfalls.Add(ctx, 1)
		a.log.Error().
			Str("product_id", product.ID).
			Str("product", product.Name).
			Int("requested", requested).
			Int("available", invdomain.Total(sources)).
			Int("remaining", remaining).
			Msg("faltante en asignación: la validación previa indicó stock suficiente")
		return nil, &domain.AllocationShortfallError{ProductID: product.ID, Requested: requested, Remaining: remaining}
	}

	out := make([]Deduction, 0, len(takes))
	for _, t := range takes {
		if err := a.ledger.SetQuantity(ctx, product.ID, t.WarehouseID, t.After(), actor); err != nil {
			return nil, err
		}
		a.log.Debug().
			Str("product_id", product.ID).
			Str("warehouse", t.WarehouseName).
			Int("before", t.Before).
			Int("after", t.After()).
			Msg("descuento por bodega")
		out = append(out, Deduction{
			ProductID:     product.ID,
			WarehouseID:   t.WarehouseID,
			WarehouseName: t.WarehouseName,
			Before:        t.Before,
			After:         t.After(),
		})
	}
	return out, nil
}
