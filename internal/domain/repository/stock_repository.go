package repository

import (
	"context"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

// StockRepository puerto de persistencia de StockRecord (por producto y bodega).
type StockRepository interface {
	// Get devuelve un registro en cero si no existe.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error)
	Upsert(ctx context.Context, stock *entity.StockRecord) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error)
	// ListByProductForUpdate registros con cantidad > 0, bloqueados, ordenados por nombre de bodega.
	ListByProductForUpdate(ctx context.Context, productID string) ([]*entity.StockRecord, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.StockRecord, error)
	// TotalsByProduct suma de cantidades de todas las bodegas, por producto.
	TotalsByProduct(ctx context.Context) (map[string]int, error)
}
