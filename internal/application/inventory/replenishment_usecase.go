package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-engine/internal/application/dto"
	"github.com/jhoicas/inventario-engine/internal/domain/repository"
)

// ReplenishmentUseCase lista los productos activos cuyo stock total está por debajo del mínimo.
type ReplenishmentUseCase struct {
	products repository.ProductRepository
	stock    repository.StockRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(products repository.ProductRepository, stock repository.StockRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products, stock: stock}
}

// LowStock devuelve los productos bajo mínimo con la cantidad sugerida de pedido
// (hasta 1.5 veces el mínimo) y la prioridad (1 = más urgente).
func (uc *ReplenishmentUseCase) LowStock(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	products, err := uc.products.List(ctx, 0, 0, true)
	if err != nil {
		return nil, err
	}
	totals, err := uc.stock.TotalsByProduct(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LowStockItemDTO, 0)
	for _, p := range products {
		current := totals[p.ID]
		if p.MinStock <= 0 || current >= p.MinStock {
			continue
		}
		ideal := (p.MinStock*3 + 1) / 2
		items = append(items, dto.LowStockItemDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			CurrentStock:      current,
			MinStock:          p.MinStock,
			IdealStock:        ideal,
			SuggestedOrderQty: ideal - current,
		})
	}

	// Mayor déficit relativo primero; empate por déficit absoluto y luego SKU.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		// (min-cur)/min comparado sin división.
		ra := (a.MinStock - a.CurrentStock) * b.MinStock
		rb := (b.MinStock - b.CurrentStock) * a.MinStock
		if ra != rb {
			return ra > rb
		}
		da, db := a.MinStock-a.CurrentStock, b.MinStock-b.CurrentStock
		if da != db {
			return da > db
		}
		return a.SKU < b.SKU
	})
	for i := range items {
		items[i].Priority = i + 1
	}
	return items, nil
}
