package inventory

import (
	"context"

	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Clients    repository.ClientRepository
	Stock      repository.StockRepository
	Sales      repository.SaleRepository
	Movements  repository.StockMovementRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback; si no, Commit. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
