package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

// StockQueryUseCase consultas de disponibilidad. No toma el candado: puede observar
// valores anteriores a una operación en curso.
type StockQueryUseCase struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	ledger     *Ledger
}

// NewStockQueryUseCase construye el caso de uso de consultas de stock.
func NewStockQueryUseCase(
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	stock repository.StockRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{products: products, warehouses: warehouses, ledger: NewLedger(stock)}
}

// GetAvailableStock cantidad vendible por bodega: bodegas activas con stock > 0.
func (uc *StockQueryUseCase) GetAvailableStock(ctx context.Context, productID string) (map[string]int, error) {
	records, err := uc.productRecords(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(records))
	for _, r := range records {
		if r.Quantity > 0 {
			out[r.WarehouseID] = r.Quantity
		}
	}
	return out, nil
}

// GetTotalAvailableStock suma de las bodegas activas; es el total contra el que se valida una venta.
func (uc *StockQueryUseCase) GetTotalAvailableStock(ctx context.Context, productID string) (int, error) {
	records, err := uc.productRecords(ctx, productID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range records {
		if r.Quantity > 0 {
			total += r.Quantity
		}
	}
	return total, nil
}

// GetProductStock registros con stock > 0 en bodegas activas (con nombre de bodega) y el total.
func (uc *StockQueryUseCase) GetProductStock(ctx context.Context, productID string) ([]*entity.StockRecord, int, error) {
	records, err := uc.productRecords(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*entity.StockRecord, 0, len(records))
	total := 0
	for _, r := range records {
		if r.Quantity <= 0 {
			continue
		}
		out = append(out, r)
		total += r.Quantity
	}
	return out, total, nil
}

// GetWarehouseStock productos con stock > 0 en la bodega.
func (uc *StockQueryUseCase) GetWarehouseStock(ctx context.Context, warehouseID string) ([]*entity.StockRecord, error) {
	wh, err := uc.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	records, err := uc.ledger.GetByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.StockRecord, 0, len(records))
	for _, r := range records {
		if r.Quantity > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// productRecords registros del producto en bodegas activas.
func (uc *StockQueryUseCase) productRecords(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	records, err := uc.ledger.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	active, err := uc.warehouses.List(ctx, true)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(active))
	for _, w := range active {
		ids[w.ID] = true
	}
	out := records[:0]
	for _, r := range records {
		if ids[r.WarehouseID] {
			out = append(out, r)
		}
	}
	return out, nil
}
