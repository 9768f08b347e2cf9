package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
)

// SaleRepository puerto de persistencia de ventas (cabecera + líneas como una unidad).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
	UpdateNotes(ctx context.Context, id, notes, actorID string, at time.Time) error
}
