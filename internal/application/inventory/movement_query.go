package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-engine/internal/domain"
	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// MovementQueryUseCase lectura de movimientos registrados.
type MovementQueryUseCase struct {
	movements repository.StockMovementRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(movements repository.StockMovementRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{movements: movements}
}

// GetMovement movimiento con sus líneas.
func (uc *MovementQueryUseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return m, nil
}

// ListMovements movimientos más recientes primero.
func (uc *MovementQueryUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	filter.Limit, filter.Offset = NormalizePage(filter.Limit, filter.Offset)
	return uc.movements.List(ctx, filter)
}

// NormalizePage acota limit a [1, 200] (50 por defecto) y offset a >= 0.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
