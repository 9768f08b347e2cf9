package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	invdomain "github.com/jhoicas/inventario-engine/internal/domain/inventory"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

// Ledger lectura y escritura condicional de StockRecord.
// No serializa: las escrituras corren bajo el Gate y dentro de la transacción del llamador.
type Ledger struct {
	stock repository.StockRepository
	now   func() time.Time
}

// NewLedger construye el ledger sobre el repositorio de stock (pool o tx).
func NewLedger(stock repository.StockRepository) *Ledger {
	return &Ledger{stock: stock, now: time.Now}
}

// GetQuantity cantidad actual; 0 si no existe registro.
func (l *Ledger) GetQuantity(ctx context.Context, productID, warehouseID string) (int, error) {
	rec, err := l.stock.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// LockQuantity igual que GetQuantity pero bloquea la fila hasta el fin de la transacción.
func (l *Ledger) LockQuantity(ctx context.Context, productID, warehouseID string) (int, error) {
	rec, err := l.stock.GetForUpdate(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	return rec.Quantity, nil
}

// SetQuantity escribe la nueva cantidad. Falla con InvariantViolation si es negativa.
func (l *Ledger) SetQuantity(ctx context.Context, productID, warehouseID string, newQuantity int, actor string) error {
	if newQuantity < 0 {
		return &domain.InvariantViolationError{ProductID: productID, WarehouseID: warehouseID, Quantity: newQuantity}
	}
	return l.stock.Upsert(ctx, &entity.StockRecord{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    newQuantity,
		UpdatedAt:   l.now(),
		UpdatedBy:   actor,
	})
}

// GetByProduct registros del producto en todas las bodegas.
func (l *Ledger) GetByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	return l.stock.ListByProduct(ctx, productID)
}

// GetByWarehouse registros de todos los productos de la bodega.
func (l *Ledger) GetByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockRecord, error) {
	return l.stock.ListByWarehouse(ctx, warehouseID)
}

// LockSources bodegas con stock > 0 del producto, bloqueadas para la transacción.
func (l *Ledger) LockSources(ctx context.Context, productID string) ([]invdomain.Source, error) {
	records, err := l.stock.ListByProductForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	sources := make([]invdomain.Source, 0, len(records))
	for _, r := range records {
		if r.Quantity <= 0 {
			continue
		}
		sources = append(sources, invdomain.Source{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Quantity:      r.Quantity,
		})
	}
	return sources, nil
}
