package repository

import (
	"context"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

// MovementFilter filtros de listado de movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	Type        entity.MovementType
	WarehouseID string
	Limit       int
	Offset      int
}

// StockMovementRepository puerto de persistencia de movimientos (cabecera + líneas).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
