package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-engine/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetBySKU devuelven (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdatePrice(ctx context.Context, productID string, price decimal.Decimal, at time.Time) error
	// List limit <= 0 devuelve todos.
	List(ctx context.Context, limit, offset int, onlyActive bool) ([]*entity.Product, error)
}
